package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSubscriberHash returns the hex-encoded HMAC-SHA256 of the subscriber
// identifier keyed by the tenant secret. The result is deterministic: the
// same secret and identifier always produce the same 64-character hash.
func ComputeSubscriberHash(secret, subscriberID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(subscriberID))
	return hex.EncodeToString(h.Sum(nil))
}

// Verifier validates subscriber hashes for a single tenant.
// The zero value performs no verification; set Required to enforce it.
type Verifier struct {
	// Secret is the tenant secret used to compute subscriber hashes.
	// It must never be exposed to clients.
	Secret string

	// Required enables HMAC verification for the tenant. When false,
	// Verify accepts any identifier without checking the hash.
	Required bool
}

// Verify recomputes the hash for subscriberID and compares it against the
// supplied value in constant time. It returns nil when verification is
// disabled or the hash matches, and ErrUnauthorized otherwise. A missing
// hash while verification is required is treated as a mismatch.
func (v Verifier) Verify(subscriberID, suppliedHash string) error {
	if !v.Required {
		return nil
	}
	if v.Secret == "" {
		return ErrMissingSecret
	}
	if subscriberID == "" || suppliedHash == "" {
		return ErrUnauthorized
	}

	expected := ComputeSubscriberHash(v.Secret, subscriberID)

	// hmac.Equal keeps the comparison constant-time so a mismatch leaks
	// nothing about how much of the hash was correct.
	if !hmac.Equal([]byte(expected), []byte(suppliedHash)) {
		return ErrUnauthorized
	}
	return nil
}
