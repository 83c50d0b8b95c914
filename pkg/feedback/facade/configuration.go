package facade

import (
	"github.com/blaubaer/mute-switch/pkg/common"
	"github.com/blaubaer/mute-switch/pkg/feedback"
	"github.com/blaubaer/mute-switch/pkg/feedback/hue"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type: feedback.TypeDefault,
		Hue:  hue.NewConfiguration(),
	}
}

type Configuration struct {
	Type feedback.Type     `yaml:"type"`
	Hue  hue.Configuration `yaml:"hue,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("feedback", "Additional feedback to present the mute state with (the tray icon is always on). All possible values: "+feedback.AllTypes.String()).
		Envar("MS_FEEDBACK").
		SetValue(&this.Type)

	this.Hue.SetupConfiguration(using)
}
