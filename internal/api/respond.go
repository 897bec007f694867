package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// errorResponse is the uniform error envelope for every failure.
type errorResponse struct {
	Message string `json:"message"`
}

const (
	msgServerError     = "Server error"
	msgInvalidPayload  = "Invalid request payload"
	msgPayloadTooLarge = "Request body is too large. Please use a smaller image (max 10MB)."
)

func respondJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.ErrorContext(r.Context(), "failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message string) {
	respondJSON(w, r, logger, status, errorResponse{Message: message})
}

// respondDecodeError maps a body-decode failure: oversized bodies get the
// fixed 413 message, everything else a generic 400.
func respondDecodeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(w, r, logger, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
		return
	}
	logger.WarnContext(r.Context(), "failed to decode request body",
		slog.String("error", err.Error()), slog.String("path", r.URL.Path))
	respondError(w, r, logger, http.StatusBadRequest, msgInvalidPayload)
}
