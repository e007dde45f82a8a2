package server

import (
	"context"
	"errors"
	"net/http"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/domain"

	"connectrpc.com/connect"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// httpError maps a report failure to the status and body returned to the
// caller. Upstream statuses pass through unchanged.
func httpError(err error) (int, ErrorResponse) {
	var (
		statusErr    *api.StatusError
		rateErr      *api.RateLimitError
		transportErr *api.TransportError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: "Missing name or tag"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Summoner not found"}
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, ErrorResponse{Error: "RIOT_API_KEY not configured"}
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, ErrorResponse{Error: "Rate limited by upstream", Details: err.Error()}
	case errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusBadRequest:
		return http.StatusBadGateway, ErrorResponse{Error: "Unexpected upstream response", Details: err.Error()}
	case errors.As(err, &statusErr):
		return statusErr.StatusCode, ErrorResponse{Error: "Upstream request failed", Details: err.Error()}
	case errors.As(err, &transportErr), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusBadGateway, ErrorResponse{Error: "Upstream unreachable", Details: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Details: err.Error()}
	}
}

func connectError(err error) *connect.Error {
	status, body := httpError(err)
	msg := body.Error
	if body.Details != "" {
		msg += ": " + body.Details
	}
	return connect.NewError(connectCode(status), errors.New(msg))
}

func connectCode(status int) connect.Code {
	switch {
	case status == http.StatusBadRequest:
		return connect.CodeInvalidArgument
	case status == http.StatusUnauthorized:
		return connect.CodeUnauthenticated
	case status == http.StatusForbidden:
		return connect.CodePermissionDenied
	case status == http.StatusNotFound:
		return connect.CodeNotFound
	case status == http.StatusTooManyRequests:
		return connect.CodeResourceExhausted
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return connect.CodeUnavailable
	case status >= 400 && status < 500:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}
