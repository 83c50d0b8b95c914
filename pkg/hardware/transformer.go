package hardware

import (
	"encoding/json"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

// DefaultHoldThreshold is how long a press has to be held before it is
// treated as push-to-talk instead of a toggle.
const DefaultHoldThreshold = 300 * time.Millisecond

// Transformer translates raw per-device messages into semantic mute
// actions. A press released before HoldThreshold yields one
// Toggle(ptt=false); a press held past it yields Unmute(ptt=true) when
// the threshold elapses and Mute(ptt=true) on release. Malformed
// payloads are dropped, never fatal.
type Transformer struct {
	HoldThreshold time.Duration

	// OnAction receives every emitted action, either from the delivering
	// goroutine or from a timer goroutine. It is called with the
	// transformer's lock held so the emission order always matches the
	// decision order; it must not call back into the transformer.
	OnAction func(mute.Event)

	mutex   sync.Mutex
	pending map[string]*pendingPress

	// newTimer exists so tests can drive the hold threshold manually.
	newTimer func(time.Duration, func()) *time.Timer
}

type pendingPress struct {
	timer *time.Timer
	held  bool
}

// HandleMessage consumes one raw message. Device identity is only used
// to route the per-device timing state, it does not change the action
// taxonomy.
func (this *Transformer) HandleMessage(msg Message) {
	switch this.decode(msg) {
	case gesturePress:
		this.handlePress(msg.Device.Identifier)
	case gestureRelease:
		this.handleRelease(msg.Device.Identifier)
	}
}

// Cancel drops the pending press state of a device which is being
// detached. A press which already matured into a push-to-talk hold gets
// its release-equivalent Mute(ptt=true) emitted, so an unplugged held
// key cannot leave the system stuck unmuted.
func (this *Transformer) Cancel(identifier string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	p, ok := this.pending[identifier]
	if !ok {
		return
	}
	delete(this.pending, identifier)
	if p.timer != nil {
		p.timer.Stop()
	}

	if p.held {
		this.emit(mute.Event{Action: mute.ActionMute, Ptt: true})
	}
}

type gesture uint8

const (
	gestureNone    = gesture(0)
	gesturePress   = gesture(1)
	gestureRelease = gesture(2)
)

func (this *Transformer) decode(msg Message) gesture {
	switch msg.Device.Type {
	case TypeHotkey:
		if len(msg.Payload) == 1 {
			switch msg.Payload[0] {
			case 1:
				return gesturePress
			case 0:
				return gestureRelease
			}
		}
	case TypeRemote:
		var frame struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(msg.Payload, &frame); err == nil {
			switch frame.Event {
			case "press":
				return gesturePress
			case "release":
				return gestureRelease
			}
		}
	}

	log.With("device", msg.Device).
		With("payloadLength", len(msg.Payload)).
		Debug("Unrecognized hardware message dropped.")
	return gestureNone
}

func (this *Transformer) handlePress(identifier string) {
	this.mutex.Lock()
	if this.pending == nil {
		this.pending = make(map[string]*pendingPress, 1)
	}
	if _, exists := this.pending[identifier]; exists {
		// Key auto-repeat while held.
		this.mutex.Unlock()
		return
	}

	threshold := this.HoldThreshold
	if threshold <= 0 {
		threshold = DefaultHoldThreshold
	}
	newTimer := this.newTimer
	if newTimer == nil {
		newTimer = time.AfterFunc
	}

	p := &pendingPress{}
	this.pending[identifier] = p
	p.timer = newTimer(threshold, func() {
		this.handleHoldMatured(identifier)
	})
	this.mutex.Unlock()
}

func (this *Transformer) handleHoldMatured(identifier string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	p, ok := this.pending[identifier]
	if !ok || p.held {
		return
	}
	p.held = true

	// Emitted while still holding the lock: a release racing this timer
	// must not get its Mute(ptt) out before the Unmute(ptt).
	this.emit(mute.Event{Action: mute.ActionUnmute, Ptt: true})
}

func (this *Transformer) handleRelease(identifier string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	p, ok := this.pending[identifier]
	if !ok {
		// Release of a device which is not mid-press.
		return
	}
	delete(this.pending, identifier)
	if p.timer != nil {
		p.timer.Stop()
	}

	if p.held {
		this.emit(mute.Event{Action: mute.ActionMute, Ptt: true})
	} else {
		this.emit(mute.Event{Action: mute.ActionToggle})
	}
}

func (this *Transformer) emit(ev mute.Event) {
	if f := this.OnAction; f != nil {
		f(ev)
	}
}
