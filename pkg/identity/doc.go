// Package identity implements subscriber identity verification for
// notification feeds whose application identifier is a public credential.
//
// Anyone holding the public application identifier can open a feed session,
// so a plaintext subscriber identifier alone is forgeable. The verification
// scheme binds the identifier to a per-tenant secret with HMAC-SHA256: a
// trusted backend computes the hash out-of-band and hands it to the client,
// which presents both the identifier and the hash when connecting. The
// server recomputes the hash and compares in constant time; a client can
// never mint a valid hash without the secret.
//
// # Usage
//
// On the backend, during session or page render:
//
//	hash := identity.ComputeSubscriberHash(secret, "subscriber-123")
//	// pass hash to the client together with the subscriber identifier
//
// On the feed server, when a session is established:
//
//	verifier := identity.Verifier{Secret: secret, Required: true}
//	if err := verifier.Verify(subscriberID, suppliedHash); err != nil {
//	    // respond with a generic authorization failure
//	}
//
// Verification failures are deliberately indistinguishable: callers only
// ever see ErrUnauthorized, never which part of the check failed.
package identity
