package mute

// Control is the boundary to the system which actually owns the mute
// flag (usually the default capture endpoint of the host).
//
// Mute and Unmute have to be idempotent. The notify callback passed to
// Initialize reports every state change of the underlying system,
// including changes caused by this process itself; implementations must
// keep delivering until Dispose.
type Control interface {
	Initialize(notify func(State)) error
	Dispose() error

	State() (State, error)
	Mute() error
	Unmute() error
}
