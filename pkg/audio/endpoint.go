package audio

import (
	"time"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

// Endpoint drives the mute flag of the host's default capture endpoint.
type Endpoint struct {
	PollInterval time.Duration

	endpointPlatform
}

func (this *Endpoint) Initialize(notify func(mute.State)) error {
	return this.initialize(notify)
}

func (this *Endpoint) Dispose() error {
	return this.dispose()
}

func (this *Endpoint) State() (mute.State, error) {
	return this.state()
}

func (this *Endpoint) Mute() error {
	return this.setMuted(true)
}

func (this *Endpoint) Unmute() error {
	return this.setMuted(false)
}
