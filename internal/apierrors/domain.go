package apierrors

import (
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/repo"
)

const (
	DomainNotFound  = "DOMAIN_NOT_FOUND"
	DomainExists    = "DOMAIN_EXISTS"
	InvalidHostname = "INVALID_HOSTNAME"
)

var domains = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{manager.ErrInvalidHostname},
		ExposedError: &APIError{
			Code:    InvalidHostname,
			Message: "Hostname is not valid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDomainExists, repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    DomainExists,
			Message: "Hostname is already registered",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetDomain, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    DomainNotFound,
			Message: "Custom domain not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteDomain, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    DomainNotFound,
			Message: "Custom domain not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrHostnameNotAssigned},
		ExposedError: &APIError{
			Code:    "HOSTNAME_NOT_ASSIGNED",
			Message: "Hostname does not resolve to any tenant",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGenerateChallenge},
		ExposedError: &APIError{
			Code:    "GENERATE_CHALLENGE",
			Message: "Failed to generate verification token",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateDomain},
		ExposedError: &APIError{
			Code:    "CREATE_DOMAIN",
			Message: "Failed to register custom domain",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetDomain},
		ExposedError: &APIError{
			Code:    "GET_DOMAIN",
			Message: "Failed to get custom domain",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrListDomains},
		ExposedError: &APIError{
			Code:    "LIST_DOMAINS",
			Message: "Failed to list custom domains",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteDomain},
		ExposedError: &APIError{
			Code:    "DELETE_DOMAIN",
			Message: "Failed to delete custom domain",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateDomainStatus},
		ExposedError: &APIError{
			Code:    "UPDATE_DOMAIN_STATUS",
			Message: "Failed to update custom domain status",
			Status:  http.StatusInternalServerError,
		},
	},
}
