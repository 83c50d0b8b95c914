package mute

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_Initialize_requiresControl(t *testing.T) {
	instance := &Orchestrator{}

	assert.Error(t, instance.Initialize())
}

func TestOrchestrator_Initialize_seedsFromControl(t *testing.T) {
	ctl := &fakeControl{state: StateMuted}
	instance, _ := newTestOrchestrator(t, ctl)

	assert.Equal(t, StateMuted, instance.State())
}

func TestOrchestrator_Initialize_toleratesFailingInitialQuery(t *testing.T) {
	ctl := &fakeControl{stateErr: fmt.Errorf("boom")}
	instance, _ := newTestOrchestrator(t, ctl)

	assert.Equal(t, StateUnknown, instance.State())
}

func TestOrchestrator_Toggle_isSelfInverse(t *testing.T) {
	ctl := &fakeControl{state: StateUnmuted}
	instance, published := newTestOrchestrator(t, ctl)

	require.NoError(t, instance.Toggle(context.Background()))
	p := awaitPublication(t, published)
	assert.Equal(t, StateMuted, p.state)
	assert.Equal(t, FeedbackFlash, p.kind)

	require.NoError(t, instance.Toggle(context.Background()))
	p = awaitPublication(t, published)
	assert.Equal(t, StateUnmuted, p.state)

	assert.Equal(t, 1, ctl.calls(ActionMute))
	assert.Equal(t, 1, ctl.calls(ActionUnmute))
	assert.Equal(t, StateUnmuted, instance.State())
}

func TestOrchestrator_Toggle_onUnknownIsNoOp(t *testing.T) {
	ctl := &fakeControl{stateErr: fmt.Errorf("no idea")}
	instance, published := newTestOrchestrator(t, ctl)

	require.NoError(t, instance.Toggle(context.Background()))

	assert.Equal(t, StateUnknown, instance.State())
	assert.Equal(t, 0, ctl.calls(ActionMute))
	assert.Equal(t, 0, ctl.calls(ActionUnmute))
	assertNoPublication(t, published)
}

func TestOrchestrator_ExternalNotificationAlwaysWins(t *testing.T) {
	ctl := &fakeControl{state: StateUnmuted}
	instance, published := newTestOrchestrator(t, ctl)

	instance.HandleExternalState(StateMuted)
	p := awaitPublication(t, published)
	assert.Equal(t, StateMuted, p.state)
	assert.Equal(t, FeedbackShow, p.kind)
	assert.Equal(t, StateMuted, instance.State())

	// No call towards the control results from an external notification.
	assert.Equal(t, 0, ctl.calls(ActionMute))
	assert.Equal(t, 0, ctl.calls(ActionUnmute))
}

func TestOrchestrator_HandleAction_shortPressTogglesWithStandingFeedback(t *testing.T) {
	ctl := &fakeControl{state: StateUnmuted}
	instance, published := newTestOrchestrator(t, ctl)

	instance.HandleAction(Event{Action: ActionToggle})

	p := awaitPublication(t, published)
	assert.Equal(t, StateMuted, p.state)
	assert.Equal(t, FeedbackShow, p.kind)
	assert.Equal(t, 1, ctl.calls(ActionMute))
}

func TestOrchestrator_HandleAction_pttRoundTrip(t *testing.T) {
	ctl := &fakeControl{state: StateMuted}
	instance, published := newTestOrchestrator(t, ctl)

	instance.HandleAction(Event{Action: ActionUnmute, Ptt: true})
	p := awaitPublication(t, published)
	assert.Equal(t, StateUnmuted, p.state)
	assert.Equal(t, FeedbackFlash, p.kind)

	instance.HandleAction(Event{Action: ActionMute, Ptt: true})
	p = awaitPublication(t, published)
	assert.Equal(t, StateMuted, p.state)
	assert.Equal(t, FeedbackFlash, p.kind)

	assert.Equal(t, StateMuted, instance.State())
}

func TestOrchestrator_ApplyErrorDoesNotDesynchronize(t *testing.T) {
	ctl := &fakeControl{state: StateUnmuted, muteErr: fmt.Errorf("access denied")}
	instance, published := newTestOrchestrator(t, ctl)

	instance.HandleAction(Event{Action: ActionToggle})
	assertNoPublication(t, published)
	assert.Equal(t, StateUnmuted, instance.State())

	// The next external notification resynchronizes.
	instance.HandleExternalState(StateMuted)
	p := awaitPublication(t, published)
	assert.Equal(t, StateMuted, p.state)
	assert.Equal(t, StateMuted, instance.State())
}

func TestOrchestrator_Toggle_failsWhenNotRunning(t *testing.T) {
	ctl := &fakeControl{state: StateUnmuted}
	instance, _ := newTestOrchestrator(t, ctl)
	require.NoError(t, instance.Dispose())

	assert.Error(t, instance.Toggle(context.Background()))
}

type publication struct {
	state State
	kind  FeedbackKind
}

func newTestOrchestrator(t *testing.T, ctl *fakeControl) (*Orchestrator, chan publication) {
	t.Helper()

	published := make(chan publication, 16)
	instance := &Orchestrator{
		Control: ctl,
		OnState: func(state State, kind FeedbackKind) {
			published <- publication{state, kind}
		},
	}
	require.NoError(t, instance.Initialize())
	t.Cleanup(func() { _ = instance.Dispose() })

	return instance, published
}

func awaitPublication(t *testing.T, ch chan publication) publication {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timeout while waiting for a published state")
		return publication{}
	}
}

func assertNoPublication(t *testing.T, ch chan publication) {
	t.Helper()
	select {
	case p := <-ch:
		t.Fatalf("expected no published state, but got %v/%v", p.state, p.kind)
	case <-time.After(100 * time.Millisecond):
	}
}

type fakeControl struct {
	mutex    sync.Mutex
	state    State
	stateErr error
	muteErr  error

	muteCalls   int
	unmuteCalls int

	notify func(State)
}

func (this *fakeControl) Initialize(notify func(State)) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.notify = notify
	return nil
}

func (this *fakeControl) Dispose() error {
	return nil
}

func (this *fakeControl) State() (State, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.stateErr != nil {
		return StateUnknown, this.stateErr
	}
	return this.state, nil
}

func (this *fakeControl) Mute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.muteCalls++
	if this.muteErr != nil {
		return this.muteErr
	}
	this.state = StateMuted
	return nil
}

func (this *fakeControl) Unmute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.unmuteCalls++
	this.state = StateUnmuted
	return nil
}

func (this *fakeControl) calls(of Action) int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	switch of {
	case ActionMute:
		return this.muteCalls
	case ActionUnmute:
		return this.unmuteCalls
	default:
		return 0
	}
}
