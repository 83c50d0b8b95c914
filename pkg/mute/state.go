package mute

import (
	"fmt"
	"strings"
)

type State uint8

const (
	// StateUnknown is a valid transient state, e.g. before the first
	// successful query of the underlying control. It is never a legal
	// target of a toggle.
	StateUnknown = State(0)
	StateMuted   = State(1)
	StateUnmuted = State(2)
)

var (
	AllStates = States{
		StateUnknown,
		StateMuted,
		StateUnmuted,
	}
)

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "unknown", "":
		*this = StateUnknown
		return nil
	case "muted", "mute", "off":
		*this = StateMuted
		return nil
	case "unmuted", "unmute", "on":
		*this = StateUnmuted
		return nil
	default:
		return fmt.Errorf("illegal-mute-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-mute-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateUnknown:
		return []byte("unknown"), nil
	case StateMuted:
		return []byte("muted"), nil
	case StateUnmuted:
		return []byte("unmuted"), nil
	default:
		return nil, fmt.Errorf("illegal mute state: %v", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

// Toggled resolves the target of a toggle. For StateUnknown there is no
// safe direction; ok is false and the caller has to treat the toggle as
// a no-op.
func (this State) Toggled() (target State, ok bool) {
	switch this {
	case StateMuted:
		return StateUnmuted, true
	case StateUnmuted:
		return StateMuted, true
	default:
		return StateUnknown, false
	}
}

type States []State

func (this States) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this States) String() string {
	return strings.Join(this.Strings(), ",")
}
