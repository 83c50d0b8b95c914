package audio

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Type uint8

const (
	// TypeEndpoint mutes the default capture endpoint of the host.
	TypeEndpoint = Type(0)
	// TypeApplication mutes the audio sessions of processes whose
	// executable name matches a configured pattern.
	TypeApplication = Type(1)

	TypeDefault = TypeEndpoint
)

var (
	AllTypes = Types{
		TypeEndpoint,
		TypeApplication,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "endpoint", "microphone", "mic":
		*this = TypeEndpoint
		return nil
	case "application", "app":
		*this = TypeApplication
		return nil
	default:
		return fmt.Errorf("illegal-control-type: %s", plain)
	}
}

func (this Type) String() string {
	switch this {
	case TypeEndpoint:
		return "endpoint"
	case TypeApplication:
		return "application"
	default:
		return fmt.Sprintf("illegal-control-type-%d", this)
	}
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeEndpoint, TypeApplication:
		return []byte(this.String()), nil
	default:
		return nil, fmt.Errorf("illegal control type: %v", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

func (this *Type) UnmarshalYAML(value *yaml.Node) error {
	var plain string
	if err := value.Decode(&plain); err != nil {
		return err
	}
	return this.Set(plain)
}

type Types []Type

func (this Types) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Types) String() string {
	return strings.Join(this.Strings(), ",")
}
