package hardware

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

func TestTransformer_shortPressYieldsExactlyOneToggle(t *testing.T) {
	instance, actions, _ := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.HandleMessage(hotkeyMsg("dev-1", 0))

	assert.Equal(t, []mute.Event{{Action: mute.ActionToggle}}, *actions)
}

func TestTransformer_holdYieldsPttPair(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	assert.Empty(t, *actions)

	timers.fire(0)
	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
	}, *actions)

	instance.HandleMessage(hotkeyMsg("dev-1", 0))
	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
		{Action: mute.ActionMute, Ptt: true},
	}, *actions)
}

func TestTransformer_releaseWithoutPressIsIgnored(t *testing.T) {
	instance, actions, _ := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 0))

	assert.Empty(t, *actions)
}

func TestTransformer_autoRepeatPressIsIgnored(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	assert.Len(t, timers.fns, 1)

	instance.HandleMessage(hotkeyMsg("dev-1", 0))
	assert.Equal(t, []mute.Event{{Action: mute.ActionToggle}}, *actions)
}

func TestTransformer_timerAfterReleaseHasNoEffect(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.HandleMessage(hotkeyMsg("dev-1", 0))
	// The hold timer races the release in production; a late fire on an
	// already completed press must be dropped.
	timers.fire(0)

	assert.Equal(t, []mute.Event{{Action: mute.ActionToggle}}, *actions)
}

func TestTransformer_malformedMessagesAreDropped(t *testing.T) {
	instance, actions, _ := newTestTransformer(t)

	instance.HandleMessage(Message{Device: hotkeyDescriptor("dev-1"), Payload: nil})
	instance.HandleMessage(Message{Device: hotkeyDescriptor("dev-1"), Payload: []byte{42}})
	instance.HandleMessage(Message{Device: hotkeyDescriptor("dev-1"), Payload: []byte{1, 0}})
	instance.HandleMessage(Message{Device: remoteDescriptor("dev-2"), Payload: []byte("not json")})
	instance.HandleMessage(Message{Device: remoteDescriptor("dev-2"), Payload: []byte(`{"event":"dance"}`)})

	assert.Empty(t, *actions)
}

func TestTransformer_remoteFramesAreDecoded(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(Message{Device: remoteDescriptor("dev-2"), Payload: []byte(`{"event":"press"}`)})
	timers.fire(0)
	instance.HandleMessage(Message{Device: remoteDescriptor("dev-2"), Payload: []byte(`{"event":"release"}`)})

	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
		{Action: mute.ActionMute, Ptt: true},
	}, *actions)
}

func TestTransformer_perDeviceStateIsIsolated(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.HandleMessage(hotkeyMsg("dev-2", 1))
	timers.fire(1) // only dev-2 matures
	instance.HandleMessage(hotkeyMsg("dev-1", 0))
	instance.HandleMessage(hotkeyMsg("dev-2", 0))

	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
		{Action: mute.ActionToggle},
		{Action: mute.ActionMute, Ptt: true},
	}, *actions)
}

func TestTransformer_releaseRacingHoldTimerKeepsPttOrder(t *testing.T) {
	instance, _, timers := newTestTransformer(t)

	var mutex sync.Mutex
	var actions []mute.Event
	released := make(chan struct{})
	instance.OnAction = func(ev mute.Event) {
		mutex.Lock()
		actions = append(actions, ev)
		mutex.Unlock()

		if ev.Action == mute.ActionUnmute && ev.Ptt {
			// Fire the release while the maturation is still in flight. It
			// has to queue behind the Unmute(ptt), never overtake it.
			go func() {
				defer close(released)
				instance.HandleMessage(hotkeyMsg("dev-1", 0))
			}()
			time.Sleep(25 * time.Millisecond)
		}
	}

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	timers.fire(0)
	<-released

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
		{Action: mute.ActionMute, Ptt: true},
	}, actions)
}

func TestTransformer_cancelBeforeHoldEmitsNothing(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	instance.Cancel("dev-1")
	timers.fire(0)
	instance.HandleMessage(hotkeyMsg("dev-1", 0))

	assert.Empty(t, *actions)
}

func TestTransformer_cancelDuringHoldEmitsReleaseEquivalent(t *testing.T) {
	instance, actions, timers := newTestTransformer(t)

	instance.HandleMessage(hotkeyMsg("dev-1", 1))
	timers.fire(0)
	instance.Cancel("dev-1")

	assert.Equal(t, []mute.Event{
		{Action: mute.ActionUnmute, Ptt: true},
		{Action: mute.ActionMute, Ptt: true},
	}, *actions)

	// The press is gone; a late release is ignored.
	instance.HandleMessage(hotkeyMsg("dev-1", 0))
	assert.Len(t, *actions, 2)
}

type manualTimers struct {
	fns []func()
}

func (this *manualTimers) fire(i int) {
	this.fns[i]()
}

func newTestTransformer(t *testing.T) (*Transformer, *[]mute.Event, *manualTimers) {
	t.Helper()

	actions := &[]mute.Event{}
	timers := &manualTimers{}
	instance := &Transformer{
		OnAction: func(ev mute.Event) {
			*actions = append(*actions, ev)
		},
		newTimer: func(_ time.Duration, f func()) *time.Timer {
			timers.fns = append(timers.fns, f)
			return time.AfterFunc(time.Hour, func() {})
		},
	}
	return instance, actions, timers
}

func hotkeyDescriptor(identifier string) Descriptor {
	return Descriptor{Name: identifier, Type: TypeHotkey, Identifier: identifier}
}

func remoteDescriptor(identifier string) Descriptor {
	return Descriptor{Name: identifier, Type: TypeRemote, Identifier: identifier}
}

func hotkeyMsg(identifier string, b byte) Message {
	return Message{Device: hotkeyDescriptor(identifier), Payload: []byte{b}}
}
