package remote

import "github.com/blaubaer/mute-switch/pkg/common"

func NewConfiguration() Configuration {
	return Configuration{}
}

type Configuration struct {
	// Listen is the address the websocket listener binds to, e.g.
	// "127.0.0.1:8974". Empty disables remote devices.
	Listen string `yaml:"listen,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("hardware.remote.listen", "Address to accept websocket connections of remote mute buttons on. Empty disables the listener.").
		Envar("MS_HARDWARE_REMOTE_LISTEN").
		StringVar(&this.Listen)
}
