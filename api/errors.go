package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/msusur/healthmonitoring/monitor"
	"github.com/msusur/healthmonitoring/observe"
)

var (
	// ErrBadRequest indicates a malformed request body or parameter.
	ErrBadRequest = errors.New("api: bad request")

	// ErrMissingDependency indicates New was called without a registry or sampler.
	ErrMissingDependency = errors.New("api: missing dependency")
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes. Anything unmapped is a
// 500 and is logged.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, monitor.ErrInvalidEndpoint):
		return http.StatusBadRequest
	case errors.Is(err, monitor.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitor.ErrDuplicateEndpoint):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, logger observe.Logger, w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", observe.Field{Key: "error", Value: err.Error()})
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
