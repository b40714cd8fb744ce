package apierrors

import (
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/repo"
)

const (
	InvalidCredentials = "INVALID_CREDENTIALS"
	LoginLocked        = "LOGIN_LOCKED"
	UserExists         = "USER_EXISTS"
)

var auth = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{manager.ErrInvalidCredentials},
		ExposedError: &APIError{
			Code:    InvalidCredentials,
			Message: "Invalid email or password",
			Status:  http.StatusUnauthorized,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrLoginLocked},
		ExposedError: &APIError{
			Code:    LoginLocked,
			Message: "Too many failed login attempts, try again later",
			Status:  http.StatusTooManyRequests,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUserExists, repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    UserExists,
			Message: "A user with this email already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateUser, manager.ErrInvalidEmail},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Email is not valid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateUser, manager.ErrWeakPassword},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Password must be at least 8 characters",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateUser, manager.ErrInvalidRole},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Role is not valid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetUser},
		ExposedError: &APIError{
			Code:    "GET_USER",
			Message: "Failed to get user",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateUser},
		ExposedError: &APIError{
			Code:    "CREATE_USER",
			Message: "Failed to create user",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrHashPassword},
		ExposedError: &APIError{
			Code:    "CREATE_USER",
			Message: "Failed to create user",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrIssueSessionToken},
		ExposedError: &APIError{
			Code:    "ISSUE_SESSION_TOKEN",
			Message: "Failed to issue session token",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrRecordAttempt},
		ExposedError: &APIError{
			Code:    "RECORD_LOGIN_ATTEMPT",
			Message: "Failed to record login attempt",
			Status:  http.StatusInternalServerError,
		},
	},
}
