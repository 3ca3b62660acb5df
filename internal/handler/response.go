package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/bloom/internal/apperror"
)

// maxBodyBytes bounds a JSON request body. Post creation carries a base64
// image, so the limit sits above storage.MaxImageBytes * 4/3.
const maxBodyBytes = 8 << 20

// ErrorResponse is the body of every failed API call:
//
//	{"success": false, "error": "validation_error", "message": "Caption is required.", "field": "caption"}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindTransientIO:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as an ErrorResponse. Errors without a kind are
// logged and reported without their text.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, statusFor(appErr.Kind), ErrorResponse{
			Error:   appErr.Kind.String(),
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   apperror.KindInternal.String(),
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into v. Malformed bodies become validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperror.ValidationFailed("", "Request body is too large.")
	}
	return apperror.ValidationFailed("", "Invalid JSON in request body.")
}
