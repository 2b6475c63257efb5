package dispatchapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifycenter/pkg/binder"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// Envelope wraps every JSON body the API writes.
type Envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError classifies err into a status code and error body.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, detail := http.StatusInternalServerError, &ErrorDetail{Code: "internal_error", Message: "internal error"}

	switch {
	case validator.IsValidationError(err):
		status = http.StatusUnprocessableEntity
		detail = &ErrorDetail{Code: "validation_error", Message: "validation failed", Details: map[string][]string{}}
		for _, ve := range validator.ExtractValidationErrors(err) {
			detail.Details[ve.Field] = append(detail.Details[ve.Field], ve.Message)
		}
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		status = http.StatusUnsupportedMediaType
		detail = &ErrorDetail{Code: "unsupported_media_type", Message: err.Error()}
	case errors.Is(err, binder.ErrBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
		detail = &ErrorDetail{Code: "body_too_large", Message: err.Error()}
	case errors.Is(err, binder.ErrFailedToParseJSON):
		status = http.StatusBadRequest
		detail = &ErrorDetail{Code: "invalid_body", Message: err.Error()}
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.LogAttrs(r.Context(), level, "request error",
		logger.Error(err),
		slog.Int("status_code", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	writeJSON(w, status, Envelope{Error: detail})
}
