package mute

import (
	"fmt"
	"strings"
)

type Action uint8

const (
	ActionMute   = Action(0)
	ActionUnmute = Action(1)
	ActionToggle = Action(2)
)

var (
	AllActions = Actions{
		ActionMute,
		ActionUnmute,
		ActionToggle,
	}
)

func (this *Action) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "mute":
		*this = ActionMute
		return nil
	case "unmute":
		*this = ActionUnmute
		return nil
	case "toggle":
		*this = ActionToggle
		return nil
	default:
		return fmt.Errorf("illegal-mute-action: %s", plain)
	}
}

func (this Action) String() string {
	switch this {
	case ActionMute:
		return "mute"
	case ActionUnmute:
		return "unmute"
	case ActionToggle:
		return "toggle"
	default:
		return fmt.Sprintf("illegal-mute-action-%d", this)
	}
}

type Actions []Action

func (this Actions) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Actions) String() string {
	return strings.Join(this.Strings(), ",")
}

// Event is one semantically meaningful gesture, produced by the hardware
// transformer. Ptt marks gestures which belong to a push-to-talk hold so
// consumers can pick transient instead of standing feedback.
type Event struct {
	Action Action
	Ptt    bool
}

func (this Event) String() string {
	if this.Ptt {
		return this.Action.String() + "(ptt)"
	}
	return this.Action.String()
}
