// Package httpx holds the HTTP plumbing shared by every feature package:
// JSON responses, the single error translator, request decoding and
// validation, path/query parsing, and the logging/recovery middleware.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
)

// MessageResponse is the body of operations that only confirm success.
type MessageResponse struct {
	Message string `json:"message" example:"User deleted successfully"`
}

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Skip nil so that a bodiless response is not rendered as "null".
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// The status line is already out; this only helps clients that read the body.
			http.Error(w, `{"error":{"status":500,"message":"failed to encode response"}}`, http.StatusInternalServerError)
		}
	}
}

// WriteMessage writes a {"message": ...} body with status 200.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// WriteError is the boundary translator: any error becomes an *apperror.AppError
// and is rendered as {"error": {"status", "message", "request_id"}}.
// Server-side failures are logged with their cause; client errors at debug level.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.FromError(err)
	resp := appErr.ToResponse()
	resp.Error.RequestID = middleware.GetReqID(r.Context())

	log := LoggerFrom(r.Context())
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", resp.Error.Status),
		zap.String("kind", appErr.Type.String()),
	}
	if resp.Error.Status >= http.StatusInternalServerError {
		log.Error(appErr.Message, append(fields, zap.Error(appErr.Err))...)
	} else {
		log.Debug(appErr.Message, fields...)
	}

	WriteJSON(w, resp.Error.Status, resp)
}

// NotFound answers unknown routes, and known routes called with the wrong
// method, with the uniform error payload.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, apperror.NewNotFoundError("Not Found: "+r.URL.RequestURI(), nil))
}
