package types

// SessionState is the lifecycle state of a peer session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionConnecting
	SessionOpen
	SessionClosed
)

// String returns a lower-case name for the state.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionConnecting:
		return "connecting"
	case SessionOpen:
		return "open"
	case SessionClosed:
		return "closed"
	}
	return "unknown"
}
