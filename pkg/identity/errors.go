package identity

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized: the backend refused the credential (401/403).
	ErrUnauthorized = errors.New("identity: unauthorized")
	// ErrRateLimited: the backend answered 429.
	ErrRateLimited = errors.New("identity: rate limited")
	// ErrRejected: any other 4xx, e.g. a registration validation failure.
	ErrRejected = errors.New("identity: request rejected")
	// ErrUpstreamUnavailable: network failure, 5xx, or a malformed body.
	ErrUpstreamUnavailable = errors.New("identity: upstream unavailable")
	// ErrRefreshDenied: a refresh attempt did not yield a new access token.
	ErrRefreshDenied = errors.New("identity: refresh denied")
)

// StatusError is returned for every non-2xx answer from the backend.
// errors.Is maps it onto the sentinel matching its status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("identity %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("identity %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrRejected:
		return e.Status >= 400 && e.Status < 500 &&
			e.Status != http.StatusUnauthorized &&
			e.Status != http.StatusForbidden &&
			e.Status != http.StatusTooManyRequests
	case ErrUpstreamUnavailable:
		return e.Status >= 500 || e.Status < 200
	}
	return false
}
