package moderation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the upstream store could not resolve a
	// content, report, or user identifier.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller's access level is insufficient.
	// Checked locally before forwarding; the store checks again anyway.
	ErrForbidden = errors.New("forbidden")
)

// InvalidTransitionError indicates an access level change outside the
// promotion/demotion matrix.
type InvalidTransitionError struct {
	From AccessLevel
	To   AccessLevel
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid access level transition: %s -> %s", e.From, e.To)
}

// UpstreamError carries a store response status verbatim. No local retry or
// fallback happens on these; the web layer surfaces the status unchanged.
type UpstreamError struct {
	StatusCode int
	Reason     string
}

func (e *UpstreamError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("upstream store error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream store error: status %d: %s", e.StatusCode, e.Reason)
}

// Unwrap maps well-known statuses onto the taxonomy sentinels, so callers
// can errors.Is against ErrNotFound/ErrForbidden while the verbatim status
// stays available via errors.As.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case 404:
		return ErrNotFound
	case 401, 403:
		return ErrForbidden
	default:
		return nil
	}
}
