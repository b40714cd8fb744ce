package apierrors

import (
	"net/http"

	"github.com/faithinsite/core/internal/errs"
	ficontext "github.com/faithinsite/core/utils/context"
)

// Session extraction failures outrank every other mapping. A request
// without an authenticated session is a 401 no matter what else went
// wrong while handling it.
var highPrio = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{ficontext.ErrExtractSession},
		ExposedError: &APIError{
			Code:    UnauthorizedErr,
			Message: "No authenticated session for this request",
			Status:  http.StatusUnauthorized,
		},
	},
	{
		InternalErrorChain: []error{ficontext.ErrExtractTenantID},
		ExposedError: &APIError{
			Code:    UnauthorizedErr,
			Message: "No tenant bound to this request",
			Status:  http.StatusUnauthorized,
		},
	},
}
