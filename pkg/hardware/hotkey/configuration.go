package hotkey

import "github.com/blaubaer/mute-switch/pkg/common"

func NewConfiguration() Configuration {
	return Configuration{
		Keys: []string{"f8"},
	}
}

type Configuration struct {
	Keys []string `yaml:"keys,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("hardware.hotkey.key", "Key which acts as a mute button. Can be specified multiple times; every key is its own device.").
		Envar("MS_HARDWARE_HOTKEY_KEY").
		StringsVar(&this.Keys)
}
