package models

import "errors"

// Domain error sentinels. Handlers map these to HTTP status codes; services
// wrap them with fmt.Errorf("...: %w", ...) for context.
var (
	// ErrNotFound is returned when the requested trip does not exist.
	ErrNotFound = errors.New("requested item not found")

	// ErrValidation is returned when a generated or edited itinerary fails
	// the structural Trip invariants. The prior trip is always retained.
	ErrValidation = errors.New("validation failed")

	// ErrRange is returned when a manual insertion targets a nonexistent day
	// or omits required activity fields. Rejected before any mutation.
	ErrRange = errors.New("target out of range")

	// ErrGeneration is returned when the generative capability produced no
	// parseable or valid result. Retryable; nothing is created or mutated.
	ErrGeneration = errors.New("generation failed")

	// ErrPaymentRequired is returned when a gated request cannot execute
	// until an external payment confirmation arrives.
	ErrPaymentRequired = errors.New("payment required")

	// ErrRequestClosed is returned when confirming or cancelling a gated
	// request that is no longer pending (cancelled, expired, or executed).
	ErrRequestClosed = errors.New("request is not pending")
)
