//go:build !windows

package audio

import (
	"fmt"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

type endpointPlatform struct{}

func (this *Endpoint) initialize(func(mute.State)) error {
	return fmt.Errorf("the endpoint mute control is only supported on windows")
}

func (this *Endpoint) dispose() error {
	return nil
}

func (this *Endpoint) state() (mute.State, error) {
	return mute.StateUnknown, fmt.Errorf("the endpoint mute control is only supported on windows")
}

func (this *Endpoint) setMuted(bool) error {
	return fmt.Errorf("the endpoint mute control is only supported on windows")
}
