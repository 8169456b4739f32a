package realtime

// ConnState is the connection state of a session.
//
// Valid transitions:
//
//	StateDisconnected -> StateConnecting            (Connect)
//	StateConnecting   -> StateConnected             (dial succeeded)
//	StateConnecting   -> StateReconnecting          (dial failed)
//	StateConnected    -> StateReconnecting          (network failure)
//	StateReconnecting -> StateConnected             (re-dial succeeded)
//	any               -> StateDisconnected          (Close; terminal)
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// StateHandler observes session state changes. It is invoked from the
// session's connection goroutine and must not block.
type StateHandler func(state ConnState)
