// Package event defines the wire model for feed-state events pushed over a
// notification channel.
//
// Events are named and carry a small JSON payload. The set of names is open:
// producers may emit names a given consumer does not know about, and
// consumers are expected to ignore those rather than fail. Well-known names
// and their payload shapes are declared here so that the server-side fan-out
// (pkg/hub) and the client session (pkg/realtime) agree on encoding.
package event
