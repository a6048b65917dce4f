package session

// State is the lifecycle phase of a session client. Transitions only move
// forward: Disconnected, Connecting, Connected, Terminating, Closed.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateTerminating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateTerminating:
		return "terminating"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
