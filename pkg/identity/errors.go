package identity

import "errors"

var (
	// ErrUnauthorized is the only error returned for a failed verification.
	// It intentionally carries no detail about which check failed.
	ErrUnauthorized = errors.New("identity: unauthorized")

	// ErrMissingSecret is returned when a Verifier is used without a secret
	// while verification is required.
	ErrMissingSecret = errors.New("identity: secret is required")
)
