package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FailureKind classifies transient provider failures so callers can apply
// kind-specific retry spacing and surface actionable messages.
type FailureKind int

const (
	// FailureTimeout covers network errors and deadline expirations.
	FailureTimeout FailureKind = iota + 1
	// FailureRateLimit covers 429-class throttling responses.
	FailureRateLimit
	// FailureProvider covers any other provider-side error.
	FailureProvider
)

// String returns a short human-readable name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureRateLimit:
		return "rate limit"
	default:
		return "provider error"
	}
}

// ProviderError wraps a failure from an external AI service with its
// classified kind and the operation that failed.
type ProviderError struct {
	Kind FailureKind
	Op   string // "embed" or "complete"
	Err  error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
// Unclassified errors are treated as generic provider failures.
func KindOf(err error) FailureKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return FailureProvider
}

// Classify wraps a provider error with its failure kind. Network timeouts
// and expired deadlines become FailureTimeout; throttling responses become
// FailureRateLimit; everything else is FailureProvider. Returns nil for nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		return err // already classified
	}

	kind := FailureProvider

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = FailureTimeout
	default:
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "rate limit") ||
			strings.Contains(msg, "too many requests") ||
			strings.Contains(msg, "429"):
			kind = FailureRateLimit
		case strings.Contains(msg, "timeout") ||
			strings.Contains(msg, "timed out") ||
			strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset"):
			kind = FailureTimeout
		}
	}

	return &ProviderError{Kind: kind, Op: op, Err: err}
}
