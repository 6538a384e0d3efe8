// Package httputil centralizes JSON request decoding and domain error
// translation for HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"

	dErrors "campusforum/pkg/domain-errors"
)

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidInput: http.StatusBadRequest,
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeForbidden:    http.StatusForbidden,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeConflict:     http.StatusConflict,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError renders a domain error as a JSON envelope. Internal errors omit
// the description so infrastructure details never reach clients; Forbidden and
// Conflict always carry their human-readable reason.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = dErrors.CodeInternal
	}

	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = dErrors.MessageOf(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeAndPrepare decodes the request body into T and runs its struct
// validation tags. On malformed JSON or a failed validation it logs, writes an
// invalid_input envelope, and returns ok=false so the handler can bail with a
// bare return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var zero T

	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "malformed request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return zero, false
	}

	if ok, err := govalidator.ValidateStruct(req); !ok {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, err.Error()))
		return zero, false
	}
	return req, true
}
