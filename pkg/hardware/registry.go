package hardware

import (
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/echocat/slf4g"
)

type DeviceNotFoundError struct {
	Identifier string
}

func (this DeviceNotFoundError) Error() string {
	return fmt.Sprintf("hardware device not found: %s", this.Identifier)
}

// Registry owns the catalog of discoverable devices and the single
// active one. It is the only owner of device-level attachments; on every
// change of the active device it detaches the old one before attaching
// the new one. Every attachment carries a generation id; messages of a
// stale generation are discarded, which makes the swap atomic with
// respect to message delivery.
type Registry struct {
	Providers []Provider

	// Deliver is the message sink, usually Transformer.HandleMessage.
	Deliver func(Message)

	OnDevicesChanged func(Descriptors)
	OnActiveChanged  func(*Descriptor)

	// OnDetach fires after a device stopped delivering, usually wired to
	// Transformer.Cancel.
	OnDetach func(identifier string)

	mutex       sync.Mutex
	devices     map[string]Device
	active      Device
	generation  atomic.Uint64
	initialized bool
}

func (this *Registry) Initialize() error {
	this.mutex.Lock()
	if this.initialized {
		this.mutex.Unlock()
		return nil
	}
	this.devices = make(map[string]Device)
	for _, p := range this.Providers {
		if err := p.Initialize(this.refresh); err != nil {
			this.mutex.Unlock()
			return err
		}
	}
	this.initialized = true
	this.mutex.Unlock()

	this.refresh()
	return nil
}

func (this *Registry) Dispose() (rErr error) {
	this.ClearActive()

	this.mutex.Lock()
	defer this.mutex.Unlock()

	for _, p := range this.Providers {
		if err := p.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}
	this.initialized = false

	return
}

// Available returns a snapshot of all currently enumerable devices.
// Order is unspecified; identifiers are unique.
func (this *Registry) Available() Descriptors {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.snapshotLocked()
}

// Active returns the descriptor of the active device, or nil.
func (this *Registry) Active() *Descriptor {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if a := this.active; a != nil {
		d := a.Descriptor()
		return &d
	}
	return nil
}

// SetActive activates the device with the given identifier, detaching a
// previously active one first.
func (this *Registry) SetActive(identifier string) error {
	this.mutex.Lock()
	d, ok := this.devices[identifier]
	if !ok {
		this.mutex.Unlock()
		return DeviceNotFoundError{identifier}
	}
	if this.active == d {
		this.mutex.Unlock()
		return nil
	}
	previous := this.detachLocked()
	if err := this.attachLocked(d); err != nil {
		this.mutex.Unlock()
		this.notifyDetached(previous)
		if previous != "" {
			this.fireActiveChanged(nil)
		}
		return err
	}
	desc := d.Descriptor()
	this.mutex.Unlock()

	this.notifyDetached(previous)
	this.fireActiveChanged(&desc)
	return nil
}

// ClearActive detaches the active device, if any. A cleared active
// device is a valid state and means "no active device".
func (this *Registry) ClearActive() {
	this.mutex.Lock()
	previous := this.detachLocked()
	this.mutex.Unlock()

	if previous != "" {
		this.notifyDetached(previous)
		this.fireActiveChanged(nil)
	}
}

// refresh re-enumerates all providers. A previously active device stays
// active if its identifier is still present; otherwise active becomes
// none and callers have to re-prompt selection.
func (this *Registry) refresh() {
	this.mutex.Lock()

	next := make(map[string]Device)
	for _, p := range this.Providers {
		for _, d := range p.Devices() {
			id := d.Descriptor().Identifier
			if _, exists := next[id]; exists {
				log.With("device", d.Descriptor()).
					Warn("Duplicate device identifier while enumerating; ignoring the duplicate.")
				continue
			}
			next[id] = d
		}
	}
	this.devices = next

	var detached string
	activeCleared := false
	if a := this.active; a != nil {
		id := a.Descriptor().Identifier
		if d, ok := next[id]; !ok {
			detached = this.detachLocked()
			activeCleared = true
		} else if d != a {
			// Same identifier, new instance (e.g. reconnect): re-parent
			// without treating it as a user-visible change.
			detached = this.detachLocked()
			if err := this.attachLocked(d); err != nil {
				log.WithError(err).
					With("device", d.Descriptor()).
					Warn("Cannot re-attach to re-enumerated device.")
				activeCleared = true
			}
		}
	}
	snapshot := this.snapshotLocked()
	this.mutex.Unlock()

	this.notifyDetached(detached)
	if f := this.OnDevicesChanged; f != nil {
		f(snapshot)
	}
	if activeCleared {
		this.fireActiveChanged(nil)
	}
}

func (this *Registry) snapshotLocked() Descriptors {
	result := make(Descriptors, 0, len(this.devices))
	for _, d := range this.devices {
		result = append(result, d.Descriptor())
	}
	return result
}

// detachLocked stops delivery of the active device and returns its
// identifier, or "" if there was none. After it returns no message of
// the old attachment passes the generation check anymore.
func (this *Registry) detachLocked() string {
	a := this.active
	if a == nil {
		return ""
	}
	this.generation.Add(1)
	if err := a.Detach(); err != nil {
		log.WithError(err).
			With("device", a.Descriptor()).
			Warn("Cannot cleanly detach from device.")
	}
	this.active = nil
	return a.Descriptor().Identifier
}

func (this *Registry) attachLocked(d Device) error {
	gen := this.generation.Add(1)
	desc := d.Descriptor()
	deliver := func(payload []byte) {
		if this.generation.Load() != gen {
			// Late message of a stale attachment.
			return
		}
		if f := this.Deliver; f != nil {
			f(Message{Device: desc, Payload: payload})
		}
	}
	if err := d.Attach(deliver); err != nil {
		return fmt.Errorf("cannot attach to device %v: %w", desc, err)
	}
	this.active = d
	return nil
}

func (this *Registry) notifyDetached(identifier string) {
	if identifier == "" {
		return
	}
	if f := this.OnDetach; f != nil {
		f(identifier)
	}
}

func (this *Registry) fireActiveChanged(d *Descriptor) {
	if f := this.OnActiveChanged; f != nil {
		f(d)
	}
}
