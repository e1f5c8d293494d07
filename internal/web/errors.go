package web

import (
	"errors"
	"net/http"

	"daily-report/internal/domain"
	"daily-report/internal/security"
)

var (
	// ErrRoutingFailed is returned when a handler or command name is unknown.
	ErrRoutingFailed = errors.New("no handler for route")
	// ErrUnauthorized is returned when the requester may not touch a record.
	ErrUnauthorized = errors.New("requester is not permitted")
	// ErrTokenInvalid is returned when a submitted CSRF token does not match.
	ErrTokenInvalid = security.ErrInvalidToken
)

// StatusFor maps a handler error to the status of the generic error view.
// Routing failures, missing records and ownership failures share one status
// so the response does not reveal which of them occurred.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrRoutingFailed),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, ErrUnauthorized):
		return http.StatusNotFound
	case errors.Is(err, ErrTokenInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
