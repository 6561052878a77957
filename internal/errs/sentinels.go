// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or the caller
	// may not see it. Both cases are reported identically.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict indicates the requested transition clashes with current state
	// (e.g., the recipient already holds an active share).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates a missing or invalid session, or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated caller lacking a specific right.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates caller-fixable malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream indicates the generative backend failed or never produced valid data.
	ErrUpstream = errors.New("generation failed")
)
