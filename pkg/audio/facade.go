package audio

import (
	"fmt"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

// NewControl builds the configured mute control.
func NewControl(conf *Configuration) (mute.Control, error) {
	switch conf.Type {
	case TypeEndpoint:
		return &Endpoint{
			PollInterval: conf.PollInterval,
		}, nil
	case TypeApplication:
		if !conf.Application.HasContent() {
			return nil, fmt.Errorf("control type %v requires --control.application", conf.Type)
		}
		return &Application{
			Name:         conf.Application,
			PollInterval: conf.PollInterval,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported control type: %v", conf.Type)
	}
}
