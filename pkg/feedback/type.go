package feedback

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Type uint8

const (
	TypeOff     = Type(0)
	TypeSystray = Type(1)
	TypeHue     = Type(2)

	TypeDefault = TypeOff
)

var (
	AllTypes = Types{
		TypeOff,
		TypeSystray,
		TypeHue,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "off", "none", "":
		*this = TypeOff
		return nil
	case "systray":
		*this = TypeSystray
		return nil
	case "hue":
		*this = TypeHue
		return nil
	default:
		return fmt.Errorf("illegal-feedback-type: %s", plain)
	}
}

func (this Type) String() string {
	switch this {
	case TypeOff:
		return "off"
	case TypeSystray:
		return "systray"
	case TypeHue:
		return "hue"
	default:
		return fmt.Sprintf("illegal-feedback-type-%d", this)
	}
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeOff, TypeSystray, TypeHue:
		return []byte(this.String()), nil
	default:
		return nil, fmt.Errorf("illegal feedback type: %v", this)
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
