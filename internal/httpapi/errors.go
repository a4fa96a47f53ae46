package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tutord/internal/download"
	"tutord/internal/manager"
	"tutord/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps service errors to HTTP status codes.
// Download errors come first: they carry the upstream status, which must not
// leak through as our own.
func statusForError(err error) int {
	switch {
	case download.IsAlreadyInProgress(err), manager.IsAlreadyInProgress(err):
		return http.StatusConflict
	case download.IsInvalidRequest(err):
		return http.StatusBadRequest
	case download.IsCancelled(err):
		return http.StatusConflict
	case download.IsNetworkOrServer(err):
		return http.StatusBadGateway
	case manager.IsAssetMissingOrUndersized(err):
		return http.StatusUnprocessableEntity
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case manager.IsBackendInitializationFailure(err):
		return http.StatusInternalServerError
	case manager.IsNotInitialized(err):
		return http.StatusConflict
	case manager.IsEmptyPrompt(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Success: false, ErrorMessage: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
