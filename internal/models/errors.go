// ABOUTME: Sentinel error kinds shared across the engine
// ABOUTME: Wrapped with fmt.Errorf and classified with errors.Is
package models

import "errors"

// Engine errors represent the failure taxonomy surfaced to callers.
// Infrastructure code wraps these with context via fmt.Errorf("...: %w", ...).
var (
	// ErrValidation indicates malformed or unacceptable input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates a transient failure in an external service
	// (embeddings, LLM, or durable storage). Retryable.
	ErrUpstream = errors.New("upstream error")

	// ErrConflict indicates concurrent operations on the same document
	// that could not be collapsed. Single-flight makes this rare.
	ErrConflict = errors.New("conflict")
)

// ErrorKind returns the stable machine-readable kind for an error,
// or "internal_error" if it matches no known sentinel.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}
