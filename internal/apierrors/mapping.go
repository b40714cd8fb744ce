// Package apierrors maps internal error chains onto the error responses
// the HTTP API exposes. Handlers never pick status codes themselves, they
// hand the raw error to TransformToAPIError and write whatever comes back.
package apierrors

import (
	"context"
	"slices"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/errs"
)

type APIError struct {
	Code    string
	Message string
	Status  int
	Context *map[string]any
}

func (e *APIError) SetContext(context *map[string]any) {
	e.Context = context
}

func (e *APIError) DefaultError() *APIError {
	return InternalServerErrorMessage()
}

// AsMessage renders the mapped error in the wire shape served to clients.
func (e *APIError) AsMessage() fiapi.ErrorMessage {
	return fiapi.ErrorMessage{Error: fiapi.DetailedError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Context: e.Context,
	}}
}

var APIErrorMapper = errs.NewMapper(slices.Concat(
	tenants,
	domains,
	redirects,
	auth,
	defaultMapper,
), highPrio)

// TransformToAPIError resolves the response for an internal error. Errors
// without a mapping collapse to a plain 500 so internals never leak.
func TransformToAPIError(ctx context.Context, err error) *fiapi.ErrorMessage {
	e := APIErrorMapper.Transform(ctx, err)
	msg := e.AsMessage()

	return &msg
}
