// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	dErrors "smpadmin/pkg/domain-errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxBodyBytes caps JSON request bodies. The largest field is a PEM
// certificate of at most 64 KiB.
const MaxBodyBytes = 128 << 10

// Preparable is implemented by request DTOs that normalize themselves before validation.
type Preparable interface {
	Normalize()
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Detail           any    `json:"detail,omitempty"`
}

// WriteError maps a domain error to an HTTP status and writes it. Internal
// errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = messageOf(err)
		body.Detail = dErrors.DetailOf(err)
	}
	WriteJSON(w, StatusFor(code), body)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// DecodeAndPrepare decodes a JSON body into T, normalizes it when it
// implements Preparable and validates its struct tags. On failure the error
// response has already been written and ok is false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:            string(dErrors.CodeBadRequest),
				ErrorDescription: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return nil, false
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	if p, ok := any(&req).(Preparable); ok {
		p.Normalize()
	}
	if err := validate.Struct(&req); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request: "+err.Error()))
		return nil, false
	}
	return &req, true
}
