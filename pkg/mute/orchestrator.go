package mute

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/echocat/slf4g"
)

// Orchestrator is the single owner of the current mute state. Hardware
// actions, external state notifications and manual commands are all
// serialized through one worker goroutine; nothing else ever mutates the
// state or talks to the Control.
type Orchestrator struct {
	Control Control

	// OnState is called from the worker goroutine after every processed
	// event, with the resulting state and the kind of feedback to present.
	OnState func(State, FeedbackKind)

	events  chan orchestratorEvent
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
	current atomic.Uint32

	// state is owned exclusively by the worker goroutine.
	state State

	mutex sync.Mutex
}

func (this *Orchestrator) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.started.Load() {
		return nil
	}
	if this.Control == nil {
		return fmt.Errorf("no mute control configured")
	}

	state, err := this.Control.State()
	if err != nil {
		log.WithError(err).
			Warn("Cannot query initial mute state. Starting with unknown.")
		state = StateUnknown
	}
	this.state = state
	this.current.Store(uint32(state))

	this.events = make(chan orchestratorEvent, 64)
	this.stop = make(chan struct{})
	this.done = make(chan struct{})
	this.started.Store(true)

	go this.run()

	return nil
}

func (this *Orchestrator) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.started.Load() {
		return nil
	}

	close(this.stop)
	<-this.done
	this.started.Store(false)

	return nil
}

// State returns the last value published by the worker. It is a cached
// broadcast copy; it never reads through to the Control.
func (this *Orchestrator) State() State {
	return State(this.current.Load())
}

// HandleAction accepts a semantic gesture from the hardware transformer.
// Fire-and-forget; delivery order per source is preserved.
func (this *Orchestrator) HandleAction(ev Event) {
	this.post(orchestratorEvent{kind: eventAction, action: ev})
}

// HandleExternalState accepts a state-changed notification of the
// underlying system. The notified value always wins; no call towards the
// Control results from it.
func (this *Orchestrator) HandleExternalState(v State) {
	this.post(orchestratorEvent{kind: eventExternal, state: v})
}

// Toggle is the manual command. It has the semantics of a non-PTT toggle
// but requests transient feedback, and it blocks until the mutation was
// processed (or the given context is done).
func (this *Orchestrator) Toggle(ctx context.Context) error {
	reply := make(chan error, 1)
	if !this.post(orchestratorEvent{kind: eventCommand, reply: reply}) {
		return fmt.Errorf("orchestrator is not running")
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type orchestratorEventKind uint8

const (
	eventExternal = orchestratorEventKind(0)
	eventAction   = orchestratorEventKind(1)
	eventCommand  = orchestratorEventKind(2)
)

type orchestratorEvent struct {
	kind   orchestratorEventKind
	state  State
	action Event
	reply  chan error
}

func (this *Orchestrator) post(e orchestratorEvent) bool {
	if !this.started.Load() {
		return false
	}
	select {
	case this.events <- e:
		return true
	case <-this.stop:
		return false
	}
}

func (this *Orchestrator) run() {
	defer close(this.done)
	for {
		select {
		case <-this.stop:
			return
		case e := <-this.events:
			this.handle(e)
		}
	}
}

func (this *Orchestrator) handle(e orchestratorEvent) {
	answered := false
	defer func() {
		if r := recover(); r != nil {
			log.With("event", e.kind).
				Error("Panic while handling event; the event was dropped: ", r)
			if e.reply != nil && !answered {
				e.reply <- fmt.Errorf("panic while handling command: %v", r)
			}
		}
	}()

	switch e.kind {
	case eventExternal:
		this.handleExternal(e.state)
	case eventAction:
		kind := FeedbackShow
		if e.action.Ptt {
			kind = FeedbackFlash
		}
		if err := this.apply(e.action.Action, kind); err != nil {
			log.WithError(err).
				With("action", e.action).
				Error("Cannot apply mute action. State will resynchronize with the next external notification.")
		}
	case eventCommand:
		err := this.apply(ActionToggle, FeedbackFlash)
		answered = true
		e.reply <- err
	}
}

func (this *Orchestrator) handleExternal(v State) {
	if this.state != v {
		log.With("lastState", this.state).
			With("state", v).
			Info("External mute state change detected.")
	}
	this.state = v
	this.publish(v, FeedbackShow)
}

func (this *Orchestrator) apply(action Action, kind FeedbackKind) error {
	var target State
	switch action {
	case ActionMute:
		target = StateMuted
	case ActionUnmute:
		target = StateUnmuted
	case ActionToggle:
		t, ok := this.state.Toggled()
		if !ok {
			log.Debug("Toggle while mute state is unknown; ignoring.")
			return nil
		}
		target = t
	default:
		return fmt.Errorf("illegal mute action: %v", action)
	}

	var err error
	if target == StateMuted {
		err = this.Control.Mute()
	} else {
		err = this.Control.Unmute()
	}
	if err != nil {
		return err
	}

	this.state = target
	this.publish(target, kind)

	return nil
}

func (this *Orchestrator) publish(state State, kind FeedbackKind) {
	this.current.Store(uint32(state))
	if f := this.OnState; f != nil {
		f(state, kind)
	}
}
