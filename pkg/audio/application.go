package audio

import (
	"time"

	"github.com/blaubaer/mute-switch/pkg/common"
	"github.com/blaubaer/mute-switch/pkg/mute"
)

// Application drives the mute flag of the audio sessions owned by
// processes whose executable name matches Name. It reports Unknown
// while no matching session exists.
type Application struct {
	Name         common.Regexp
	PollInterval time.Duration

	applicationPlatform
}

func (this *Application) Initialize(notify func(mute.State)) error {
	return this.initialize(notify)
}

func (this *Application) Dispose() error {
	return this.dispose()
}

func (this *Application) State() (mute.State, error) {
	return this.state()
}

func (this *Application) Mute() error {
	return this.setMuted(true)
}

func (this *Application) Unmute() error {
	return this.setMuted(false)
}
