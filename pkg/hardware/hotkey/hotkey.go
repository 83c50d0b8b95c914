// Package hotkey provides hardware devices backed by a global keyboard
// hook. Every configured key is one device; key-down and key-up are
// delivered as single-byte payloads (1 = press, 0 = release).
package hotkey

import (
	"fmt"
	"strings"
	"sync"

	log "github.com/echocat/slf4g"
	hook "github.com/robotn/gohook"

	"github.com/blaubaer/mute-switch/pkg/hardware"
)

type Provider struct {
	Configuration

	mutex       sync.Mutex
	devices     []*device
	initialized bool
}

func (this *Provider) Initialize(onChange func()) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.initialized {
		return nil
	}

	for _, key := range this.Keys {
		key = strings.TrimSpace(strings.ToLower(key))
		if key == "" {
			continue
		}
		if _, ok := hook.Keycode[key]; !ok {
			return fmt.Errorf("unknown hotkey: %q", key)
		}

		d := &device{key: key}
		hook.Register(hook.KeyDown, []string{key}, d.onKeyDown)
		hook.Register(hook.KeyHold, []string{key}, d.onKeyDown)
		hook.Register(hook.KeyUp, []string{key}, d.onKeyUp)
		this.devices = append(this.devices, d)

		log.With("key", key).
			Debug("Hotkey device registered.")
	}

	if len(this.devices) > 0 {
		events := hook.Start()
		go func() {
			<-hook.Process(events)
		}()
	}

	this.initialized = true

	// The key set is static; onChange is never needed after the initial
	// enumeration done by the registry.
	_ = onChange

	return nil
}

func (this *Provider) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return nil
	}

	if len(this.devices) > 0 {
		hook.End()
	}
	this.devices = nil
	this.initialized = false

	return nil
}

func (this *Provider) Devices() []hardware.Device {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	result := make([]hardware.Device, len(this.devices))
	for i, d := range this.devices {
		result[i] = d
	}
	return result
}

type device struct {
	key string

	mutex   sync.RWMutex
	deliver func([]byte)
}

func (this *device) Descriptor() hardware.Descriptor {
	return hardware.Descriptor{
		Name:       fmt.Sprintf("Key %q", strings.ToUpper(this.key)),
		Type:       hardware.TypeHotkey,
		Identifier: "hotkey:" + this.key,
	}
}

func (this *device) Attach(deliver func(payload []byte)) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.deliver = deliver
	return nil
}

func (this *device) Detach() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.deliver = nil
	return nil
}

func (this *device) onKeyDown(hook.Event) {
	this.send(1)
}

func (this *device) onKeyUp(hook.Event) {
	this.send(0)
}

func (this *device) send(b byte) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if f := this.deliver; f != nil {
		f([]byte{b})
	}
}
