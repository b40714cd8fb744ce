package apierrors

import (
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
)

const (
	TenantNotFound = "TENANT_NOT_FOUND"
	TenantExists   = "TENANT_EXISTS"
)

var tenants = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{manager.ErrTenantExists, repo.ErrUniqueConstraint},
		ExposedError: &APIError{
			Code:    TenantExists,
			Message: "A tenant with this slug already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateTenant, manager.ErrSlugLength},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Slug must be between 3 and 63 characters",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateTenant, manager.ErrInvalidSlug},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Slug must be lowercase letters, digits and hyphens",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateTenant, manager.ErrNameCannotBeEmpty},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Name cannot be empty",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateTenant, model.ErrInvalidTenantStatus},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Unknown tenant status",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateTenant, model.ErrInvalidTenantStatus},
		ExposedError: &APIError{
			Code:    ValidationErr,
			Message: "Unknown tenant status",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetTenant, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    TenantNotFound,
			Message: "Tenant does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateTenant, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    TenantNotFound,
			Message: "Tenant does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteTenant, repo.ErrNotFound},
		ExposedError: &APIError{
			Code:    TenantNotFound,
			Message: "Tenant does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrSanitiseTenantData},
		ExposedError: &APIError{
			Code:    "SANITISE_TENANT_DATA",
			Message: "Failed to sanitise tenant data",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrListTenants},
		ExposedError: &APIError{
			Code:    "LIST_TENANTS",
			Message: "Failed to list tenants",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrGetTenant},
		ExposedError: &APIError{
			Code:    "GET_TENANT",
			Message: "Failed to get tenant",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrCreateTenant},
		ExposedError: &APIError{
			Code:    "CREATE_TENANT",
			Message: "Failed to create tenant",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrUpdateTenant},
		ExposedError: &APIError{
			Code:    "UPDATE_TENANT",
			Message: "Failed to update tenant",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrDeleteTenant},
		ExposedError: &APIError{
			Code:    "DELETE_TENANT",
			Message: "Failed to delete tenant",
			Status:  http.StatusInternalServerError,
		},
	},
}
