//go:build !windows

package audio

import (
	"fmt"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

type applicationPlatform struct{}

func (this *Application) initialize(func(mute.State)) error {
	return fmt.Errorf("the application mute control is only supported on windows")
}

func (this *Application) dispose() error {
	return nil
}

func (this *Application) state() (mute.State, error) {
	return mute.StateUnknown, fmt.Errorf("the application mute control is only supported on windows")
}

func (this *Application) setMuted(bool) error {
	return fmt.Errorf("the application mute control is only supported on windows")
}
