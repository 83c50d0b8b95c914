// Package systray reflects the mute state in the tray icon.
package systray

import (
	"fmt"

	"github.com/getlantern/systray"

	"github.com/blaubaer/mute-switch/pkg/feedback"
	"github.com/blaubaer/mute-switch/pkg/mute"
)

type Systray struct {
	IconMuted   []byte
	IconUnmuted []byte
	IconUnknown []byte

	// StatusItem is an optional menu item which mirrors the tooltip, so
	// the state is visible without hovering.
	StatusItem *systray.MenuItem
}

func (this *Systray) Initialize() error {
	if len(this.IconMuted) == 0 {
		return fmt.Errorf("IconMuted is empty")
	}
	if len(this.IconUnmuted) == 0 {
		return fmt.Errorf("IconUnmuted is empty")
	}
	if len(this.IconUnknown) == 0 {
		this.IconUnknown = this.IconMuted
	}
	return nil
}

func (this *Systray) Dispose() error {
	return nil
}

func (this *Systray) Show(state mute.State) error {
	var icon []byte
	var title string
	switch state {
	case mute.StateMuted:
		icon, title = this.IconMuted, "Microphone is muted"
	case mute.StateUnmuted:
		icon, title = this.IconUnmuted, "Microphone is live"
	default:
		icon, title = this.IconUnknown, "Microphone state is unknown"
	}

	systray.SetIcon(icon)
	systray.SetTooltip(title)
	if mi := this.StatusItem; mi != nil {
		mi.SetTitle(title)
	}
	return nil
}

func (this *Systray) Flash(state mute.State) error {
	// The tray icon has no transient presentation of its own; the next
	// state broadcast overwrites it anyway.
	return this.Show(state)
}

func (this *Systray) Update() error {
	return nil
}

func (this *Systray) GetType() feedback.Type {
	return feedback.TypeSystray
}
