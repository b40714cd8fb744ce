package apierrors

import (
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/repo"
)

const (
	RedirectNotFound   = "REDIRECT_NOT_FOUND"
	RedirectExists     = "REDIRECT_EXISTS"
	InvalidPath        = "INVALID_PATH"
	InvalidDestination = "INVALID_DESTINATION"
)

var redirects = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{manager.ErrInvalidPath},
		ExposedError: &APIError{
			Code:    InvalidPath,
			Message: "Path must be absolute and free of control characters",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrInvalidDestination},
		ExposedError: &APIError{
			Code:    InvalidDestination,
			Message: "Destination must be an absolute path or an http(s) URL",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrRedirectExists, repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    RedirectExists,
			Message: "A rule for this source path already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetRedirect, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    RedirectNotFound,
			Message: "Redirect rule not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateRedirect, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    RedirectNotFound,
			Message: "Redirect rule not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteRedirect, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    RedirectNotFound,
			Message: "Redirect rule not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrNoRedirect},
		ExposedError: &APIError{
			Code:    "NO_REDIRECT",
			Message: "No redirect rule matches the path",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateRedirect},
		ExposedError: &APIError{
			Code:    "CREATE_REDIRECT",
			Message: "Failed to create redirect rule",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetRedirect},
		ExposedError: &APIError{
			Code:    "GET_REDIRECT",
			Message: "Failed to get redirect rule",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrListRedirects},
		ExposedError: &APIError{
			Code:    "LIST_REDIRECTS",
			Message: "Failed to list redirect rules",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateRedirect},
		ExposedError: &APIError{
			Code:    "UPDATE_REDIRECT",
			Message: "Failed to update redirect rule",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteRedirect},
		ExposedError: &APIError{
			Code:    "DELETE_REDIRECT",
			Message: "Failed to delete redirect rule",
			Status:  http.StatusInternalServerError,
		},
	},
}
