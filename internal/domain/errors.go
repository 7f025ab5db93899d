package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or missing request input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing news article.
	ErrNotFound = errors.New("news article not found")
	// ErrStore signals a document store failure.
	ErrStore = errors.New("document store error")
	// ErrUpstream signals a market-data or model provider failure.
	ErrUpstream = errors.New("upstream provider error")
)

// UpstreamError wraps ErrUpstream with the upstream HTTP status when known.
type UpstreamError struct {
	Status int
	Msg    string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", ErrUpstream.Error(), e.Status, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrUpstream.Error(), e.Msg)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream error carrying the given status.
// Pass status 0 when the upstream status is unknown.
func NewUpstreamError(status int, format string, args ...any) error {
	return &UpstreamError{Status: status, Msg: fmt.Sprintf(format, args...)}
}
