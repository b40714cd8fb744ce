package apierrors

import (
	"net/http"
)

const (
	InternalServerErr = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr     = "JSON_DECODE_ERROR"
	ValidationErr     = "VALIDATION_ERROR"
	UnauthorizedErr   = "UNAUTHORIZED"
	ForbiddenErr      = "FORBIDDEN"
)

func InternalServerErrorMessage() *APIError {
	return &APIError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

func JSONDecodeErrorMessage() *APIError {
	return &APIError{
		Code:    JSONDecodeErr,
		Message: "Can't decode JSON body",
		Status:  http.StatusBadRequest,
	}
}

func ValidationErrorMessage(message string) *APIError {
	return &APIError{
		Code:    ValidationErr,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func UnauthorizedErrorMessage(message string) *APIError {
	return &APIError{
		Code:    UnauthorizedErr,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func ForbiddenErrorMessage(message string) *APIError {
	return &APIError{
		Code:    ForbiddenErr,
		Message: message,
		Status:  http.StatusForbidden,
	}
}
