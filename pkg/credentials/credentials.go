package credentials

import (
	"encoding/json"
)

const appName = "github.com/blaubaer/mute-switch"

// Credentials of the hue bridge pairing. Preferably stored in the
// platform credential store; platforms without one fall back to the
// configuration file (see the hue feedback).
type Credentials struct {
	Bridge string `json:"bridge,omitempty"`
	User   string `json:"user,omitempty"`
}

func (this *Credentials) IsZero() bool {
	return this.Bridge == "" && this.User == ""
}

func (this *Credentials) HasContent() bool {
	return !this.IsZero()
}

func (this *Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, this)
}
