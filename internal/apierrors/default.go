package apierrors

import (
	"database/sql"
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/repo"
)

const (
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	UniqueError      = "UNIQUE_ERROR"
)

// defaultMapper catches repository errors that escaped without a resource
// specific wrapping. The per-resource groups carry longer chains and win
// the match whenever a manager error is present as well.
var defaultMapper = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{sql.ErrNoRows},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "Requested resource not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    ResourceNotFound,
			Message: "The requested resource was not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    UniqueError,
			Message: "Resource with such ID already exists",
			Status:  http.StatusConflict,
		},
	},
}
