package hardware

import "fmt"

// Descriptor identifies one physical or logical mute control device. The
// Identifier is stable across enumerations of the same device and serves
// as the persistence key for the last used device.
type Descriptor struct {
	Name       string `json:"name"`
	Type       Type   `json:"type"`
	Identifier string `json:"identifier"`
}

func (this Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", this.Identifier, this.Name)
}

type Descriptors []Descriptor

func (this Descriptors) IsZero() bool {
	return len(this) <= 0
}

func (this Descriptors) HasContent() bool {
	return !this.IsZero()
}

func (this Descriptors) ByIdentifier(identifier string) (Descriptor, bool) {
	for _, v := range this {
		if v.Identifier == identifier {
			return v, true
		}
	}
	return Descriptor{}, false
}

// Device is one attachable message source. Attach begins delivery of raw
// payloads to the given callback; Detach returns only once no further
// delivery will happen. The payload is opaque at this level, its meaning
// is resolved by the Transformer based on the device type.
type Device interface {
	Descriptor() Descriptor
	Attach(deliver func(payload []byte)) error
	Detach() error
}

// Message is one raw payload together with its originating device.
type Message struct {
	Device  Descriptor
	Payload []byte
}

// Provider enumerates the devices of one transport. Initialize has to
// call onChange whenever the result of Devices changes (plug/unplug).
type Provider interface {
	Initialize(onChange func()) error
	Dispose() error
	Devices() []Device
}
