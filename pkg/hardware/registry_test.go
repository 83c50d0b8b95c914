package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Available_dropsDuplicateIdentifiers(t *testing.T) {
	a := newFakeDevice("dev-1")
	b := newFakeDevice("dev-1")
	instance, _ := newTestRegistry(t, &fakeProvider{devices: []Device{a}}, &fakeProvider{devices: []Device{b}})

	assert.Len(t, instance.Available(), 1)
}

func TestRegistry_SetActive_unknownIdentifier(t *testing.T) {
	instance, events := newTestRegistry(t, &fakeProvider{})

	err := instance.SetActive("dev-7")

	var dnf DeviceNotFoundError
	require.ErrorAs(t, err, &dnf)
	assert.Equal(t, "dev-7", dnf.Identifier)
	assert.Nil(t, instance.Active())
	assert.Empty(t, events.activeChanges)
}

func TestRegistry_SetActive_deliversMessages(t *testing.T) {
	a := newFakeDevice("dev-1")
	instance, events := newTestRegistry(t, &fakeProvider{devices: []Device{a}})

	require.NoError(t, instance.SetActive("dev-1"))
	require.Len(t, events.activeChanges, 1)
	assert.Equal(t, "dev-1", events.activeChanges[0].Identifier)

	a.emit([]byte{1})
	require.Len(t, events.messages, 1)
	assert.Equal(t, "dev-1", events.messages[0].Device.Identifier)
	assert.Equal(t, []byte{1}, events.messages[0].Payload)
}

func TestRegistry_SetActive_swapIsAtomic(t *testing.T) {
	a := newFakeDevice("dev-a")
	b := newFakeDevice("dev-b")
	instance, events := newTestRegistry(t, &fakeProvider{devices: []Device{a, b}})

	require.NoError(t, instance.SetActive("dev-a"))
	staleDeliver := a.lastDeliver

	require.NoError(t, instance.SetActive("dev-b"))
	require.Len(t, events.activeChanges, 2)
	assert.Equal(t, "dev-b", events.activeChanges[1].Identifier)
	assert.Equal(t, []string{"dev-a"}, events.detached)

	// A message of the old attachment which was still in flight during
	// the swap is tagged with a stale generation and discarded.
	staleDeliver([]byte{1})
	assert.Empty(t, events.messages)

	b.emit([]byte{0})
	assert.Len(t, events.messages, 1)
}

func TestRegistry_SetActive_sameDeviceIsIdempotent(t *testing.T) {
	a := newFakeDevice("dev-a")
	instance, events := newTestRegistry(t, &fakeProvider{devices: []Device{a}})

	require.NoError(t, instance.SetActive("dev-a"))
	require.NoError(t, instance.SetActive("dev-a"))

	assert.Len(t, events.activeChanges, 1)
	assert.Empty(t, events.detached)
}

func TestRegistry_refresh_keepsActiveIfStillPresent(t *testing.T) {
	a := newFakeDevice("dev-a")
	b := newFakeDevice("dev-b")
	provider := &fakeProvider{devices: []Device{a}}
	instance, events := newTestRegistry(t, provider)

	require.NoError(t, instance.SetActive("dev-a"))
	events.reset()

	provider.set(a, b)

	require.NotNil(t, instance.Active())
	assert.Equal(t, "dev-a", instance.Active().Identifier)
	assert.Len(t, events.deviceChanges, 1)
	assert.Empty(t, events.activeChanges)
	assert.Empty(t, events.detached)
}

func TestRegistry_refresh_clearsActiveIfGone(t *testing.T) {
	a := newFakeDevice("dev-a")
	provider := &fakeProvider{devices: []Device{a}}
	instance, events := newTestRegistry(t, provider)

	require.NoError(t, instance.SetActive("dev-a"))
	staleDeliver := a.lastDeliver
	events.reset()

	provider.set()

	assert.Nil(t, instance.Active())
	require.Len(t, events.activeChanges, 1)
	assert.Nil(t, events.activeChanges[0])
	assert.Equal(t, []string{"dev-a"}, events.detached)

	staleDeliver([]byte{1})
	assert.Empty(t, events.messages)
}

func TestRegistry_ClearActive(t *testing.T) {
	a := newFakeDevice("dev-a")
	instance, events := newTestRegistry(t, &fakeProvider{devices: []Device{a}})

	require.NoError(t, instance.SetActive("dev-a"))
	events.reset()

	instance.ClearActive()

	assert.Nil(t, instance.Active())
	require.Len(t, events.activeChanges, 1)
	assert.Nil(t, events.activeChanges[0])
	assert.Equal(t, []string{"dev-a"}, events.detached)

	// Clearing twice is a no-op.
	instance.ClearActive()
	assert.Len(t, events.activeChanges, 1)
}

type registryEvents struct {
	messages      []Message
	deviceChanges []Descriptors
	activeChanges []*Descriptor
	detached      []string
}

func (this *registryEvents) reset() {
	*this = registryEvents{}
}

func newTestRegistry(t *testing.T, providers ...Provider) (*Registry, *registryEvents) {
	t.Helper()

	events := &registryEvents{}
	instance := &Registry{
		Providers: providers,
		Deliver: func(msg Message) {
			events.messages = append(events.messages, msg)
		},
		OnDevicesChanged: func(ds Descriptors) {
			events.deviceChanges = append(events.deviceChanges, ds)
		},
		OnActiveChanged: func(d *Descriptor) {
			events.activeChanges = append(events.activeChanges, d)
		},
		OnDetach: func(identifier string) {
			events.detached = append(events.detached, identifier)
		},
	}
	require.NoError(t, instance.Initialize())
	t.Cleanup(func() { _ = instance.Dispose() })
	events.reset()

	return instance, events
}

type fakeDevice struct {
	desc        Descriptor
	deliver     func([]byte)
	lastDeliver func([]byte)
}

func newFakeDevice(identifier string) *fakeDevice {
	return &fakeDevice{desc: hotkeyDescriptor(identifier)}
}

func (this *fakeDevice) Descriptor() Descriptor {
	return this.desc
}

func (this *fakeDevice) Attach(deliver func(payload []byte)) error {
	this.deliver = deliver
	this.lastDeliver = deliver
	return nil
}

func (this *fakeDevice) Detach() error {
	this.deliver = nil
	return nil
}

func (this *fakeDevice) emit(payload []byte) {
	if f := this.deliver; f != nil {
		f(payload)
	}
}

type fakeProvider struct {
	devices  []Device
	onChange func()
}

func (this *fakeProvider) Initialize(onChange func()) error {
	this.onChange = onChange
	return nil
}

func (this *fakeProvider) Dispose() error {
	return nil
}

func (this *fakeProvider) Devices() []Device {
	return this.devices
}

func (this *fakeProvider) set(devices ...Device) {
	this.devices = devices
	if f := this.onChange; f != nil {
		f()
	}
}
