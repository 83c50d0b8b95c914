package app

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blaubaer/mute-switch/pkg/audio"
	"github.com/blaubaer/mute-switch/pkg/common"
	"github.com/blaubaer/mute-switch/pkg/feedback/facade"
	"github.com/blaubaer/mute-switch/pkg/hardware"
	"github.com/blaubaer/mute-switch/pkg/hardware/hotkey"
	"github.com/blaubaer/mute-switch/pkg/hardware/remote"
)

func NewConfiguration() Configuration {
	return Configuration{
		PreventAutoSave: false,

		HoldThreshold:   hardware.DefaultHoldThreshold,
		RefreshInterval: 5 * time.Minute,

		Control:  audio.NewConfiguration(),
		Feedback: facade.NewConfiguration(),
		Hotkey:   hotkey.NewConfiguration(),
		Remote:   remote.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	// LastDeviceId is persisted whenever the user selects a device (or
	// explicitly deselects it), so the selection survives restarts.
	LastDeviceId string `yaml:"lastDeviceId,omitempty"`

	HoldThreshold   time.Duration `yaml:"holdThreshold,omitempty"`
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`

	Control  audio.Configuration  `yaml:"control,omitempty"`
	Feedback facade.Configuration `yaml:"feedback,omitempty"`
	Hotkey   hotkey.Configuration `yaml:"hotkey,omitempty"`
	Remote   remote.Configuration `yaml:"remote,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("MS_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("holdThreshold", "How long a button has to be held before it acts as push-to-talk instead of a toggle.").
		Envar("MS_HOLD_THRESHOLD").
		DurationVar(&this.HoldThreshold)
	using.Flag("refreshInterval", "How often the feedback setup should be refreshed.").
		Envar("MS_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)

	this.Control.SetupConfiguration(using)
	this.Feedback.SetupConfiguration(using)
	this.Hotkey.SetupConfiguration(using)
	this.Remote.SetupConfiguration(using)
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(this)
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(this)
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}

func defaultConfigurationFile() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		fs, err := os.Stat(appData)
		if err == nil && fs.IsDir() {
			return filepath.Join(appData, "mute-switch", "configuration.yml")
		}
	}

	u, err := user.Current()
	if err != nil {
		return "configuration.yml"
	}

	return filepath.Join(u.HomeDir, ".config", "mute-switch", "configuration.yml")
}
