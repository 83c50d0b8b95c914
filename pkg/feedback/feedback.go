package feedback

import "github.com/blaubaer/mute-switch/pkg/mute"

// Feedback presents the current mute state to the user. Show is a
// standing presentation, Flash a transient one (push-to-talk and manual
// commands). Both are fire-and-forget from the orchestrator's point of
// view; errors are only logged by the caller.
type Feedback interface {
	Dispose() error

	Show(mute.State) error
	Flash(mute.State) error

	// Update refreshes discovered targets (e.g. lights); called
	// periodically by the application.
	Update() error

	GetType() Type
}
