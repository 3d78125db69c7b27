package models

import "errors"

var ( // Failure taxonomy shared across components
	// ErrInvalidInput rejects a submission before any network call
	// (unsupported media type, oversized file). Surfaced to the user.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means the bearer credential is absent or invalid.
	// Surfaced to the user and prompts re-authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable means the remote service could not be reached or
	// answered with a transport-level failure. Absorbed at component
	// boundaries: reads and submits degrade to local data instead.
	ErrUnavailable = errors.New("service unavailable")

	// ErrCorrupt means locally persisted content could not be decoded.
	// Treated as "no local history", logged, never surfaced.
	ErrCorrupt = errors.New("corrupt local state")
)
