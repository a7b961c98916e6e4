package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Callers must fix the input; retrying never helps.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates a namespace/tenant mismatch.
	// Always a hard stop; surfaced as a security-relevant event.
	ErrForbidden = errors.New("forbidden")

	// ErrNotConfigured indicates a required provider credential or
	// endpoint is absent. Treated as a deployment error, not retried.
	ErrNotConfigured = errors.New("not configured")

	// ErrUnavailable indicates a transient failure reaching the
	// embedding provider or vector store (network, rate limit, 5xx).
	// Caller-retryable with backoff; the core does not retry internally.
	ErrUnavailable = errors.New("unavailable")
)
