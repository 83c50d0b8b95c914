package hardware

import (
	"fmt"
	"strings"
)

type Type uint8

const (
	TypeHotkey = Type(0)
	TypeRemote = Type(1)
)

var (
	AllTypes = Types{
		TypeHotkey,
		TypeRemote,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "hotkey", "key":
		*this = TypeHotkey
		return nil
	case "remote", "websocket":
		*this = TypeRemote
		return nil
	default:
		return fmt.Errorf("illegal-hardware-type: %s", plain)
	}
}

func (this Type) String() string {
	switch this {
	case TypeHotkey:
		return "hotkey"
	case TypeRemote:
		return "remote"
	default:
		return fmt.Sprintf("illegal-hardware-type-%d", this)
	}
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeHotkey, TypeRemote:
		return []byte(this.String()), nil
	default:
		return nil, fmt.Errorf("illegal hardware type: %v", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
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
