package audio

import (
	"time"

	"github.com/blaubaer/mute-switch/pkg/common"
)

// DefaultPollInterval is how often the underlying system is polled for
// externally caused mute state changes.
const DefaultPollInterval = 250 * time.Millisecond

func NewConfiguration() Configuration {
	return Configuration{
		Type:         TypeDefault,
		PollInterval: DefaultPollInterval,
		Application:  common.Regexp{},
	}
}

type Configuration struct {
	Type         Type          `yaml:"type"`
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
	Application  common.Regexp `yaml:"application,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("control", "What should be muted. All possible values: "+AllTypes.String()).
		Envar("MS_CONTROL").
		SetValue(&this.Type)
	using.Flag("control.pollInterval", "How often the system is polled for externally caused mute state changes.").
		Envar("MS_CONTROL_POLL_INTERVAL").
		DurationVar(&this.PollInterval)
	using.Flag("control.application", "Executable name as regex of the application(s) whose audio sessions should be muted. Only used with --control=application.").
		Envar("MS_CONTROL_APPLICATION").
		SetValue(&this.Application)
}
