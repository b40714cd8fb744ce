package write

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/log"
	ficontext "github.com/faithinsite/core/utils/context"
)

const contentTypeJSON = "application/json"

// ErrorResponse writes an error response to the client, stamped with the
// request ID so a client report can be matched to the log line.
func ErrorResponse(ctx context.Context, w http.ResponseWriter, errorResponse fiapi.ErrorMessage) {
	requestID, _ := ficontext.GetRequestID(ctx)

	errorResponse.Error.RequestID = &requestID

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(errorResponse.Error.Status)

	err := json.NewEncoder(w).Encode(&errorResponse)
	if err != nil {
		log.Error(ctx, "Failed to encode error response", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)

		return
	}
}

// JSONResponse writes a success body with the given status code. A nil body
// writes only the status.
func JSONResponse(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	if body == nil {
		return
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Error(ctx, "Failed to encode response body", err)
	}
}
