package server

import (
	"context"
	"errors"
	"net/http"

	"ConcertHub/core/aggregation"
	"ConcertHub/core/archive"
	"ConcertHub/logger"

	"github.com/goccy/go-json"
)

// statusClientClosedRequest is reported when the caller went away mid-request.
const statusClientClosedRequest = 499

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse acknowledges an administrative action.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// errorStatus maps engine and upstream errors onto a status code and a
// client-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, aggregation.ErrInvalidRequest), errors.Is(err, aggregation.ErrMalformedIdentity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, aggregation.ErrNotFound):
		return http.StatusNotFound, "Concert not found"
	case errors.Is(err, archive.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "Browse service timed out"
	case errors.Is(err, archive.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Browse service unavailable"
	case errors.Is(err, archive.ErrUpstreamRejected):
		return http.StatusBadGateway, "Browse service error"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Failed to aggregate concerts"
	}
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logger.String("request_id", RequestID(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.ErrorField(err))
	} else {
		logger.Info("request rejected",
			logger.String("request_id", RequestID(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.ErrorField(err))
	}
	writeError(w, status, detail)
}
