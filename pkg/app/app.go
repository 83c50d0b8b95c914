package app

import (
	"context"
	"os"
	"sync"
	"time"

	"dario.cat/mergo"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/mute-switch/pkg/audio"
	"github.com/blaubaer/mute-switch/pkg/common"
	"github.com/blaubaer/mute-switch/pkg/feedback"
	"github.com/blaubaer/mute-switch/pkg/feedback/facade"
	"github.com/blaubaer/mute-switch/pkg/hardware"
	"github.com/blaubaer/mute-switch/pkg/hardware/hotkey"
	"github.com/blaubaer/mute-switch/pkg/hardware/remote"
	"github.com/blaubaer/mute-switch/pkg/mute"
)

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

// App assembles the whole pipeline: hardware providers feed the
// registry, the registry's active device feeds the transformer, the
// transformer feeds the orchestrator and the orchestrator's published
// states feed the feedback sinks.
type App struct {
	Registry          hardware.Registry
	Transformer       hardware.Transformer
	Orchestrator      mute.Orchestrator
	Feedback          facade.Facade
	OtherFeedbacks    []feedback.Feedback
	ConfigurationFile string

	// OnDevicesChanged and OnActiveChanged are forwarded registry events,
	// meant for a UI which presents device selection.
	OnDevicesChanged func(hardware.Descriptors)
	OnActiveChanged  func(*hardware.Descriptor)

	control mute.Control
	hotkeys hotkey.Provider
	remotes remote.Provider

	configFromFlags Configuration
	config          Configuration
	configMutex     sync.Mutex
	initialized     bool
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		StringVar(&this.ConfigurationFile)
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags, mergo.WithOverride); err != nil {
		return err
	}

	control, err := audio.NewControl(&this.config.Control)
	if err != nil {
		return err
	}
	this.control = control

	this.Orchestrator.Control = control
	this.Orchestrator.OnState = this.present

	this.Transformer.HoldThreshold = this.config.HoldThreshold
	this.Transformer.OnAction = this.Orchestrator.HandleAction

	this.hotkeys.Configuration = this.config.Hotkey
	this.remotes.Configuration = this.config.Remote
	this.Registry.Providers = []hardware.Provider{&this.hotkeys, &this.remotes}
	this.Registry.Deliver = this.Transformer.HandleMessage
	this.Registry.OnDetach = this.Transformer.Cancel
	this.Registry.OnDevicesChanged = this.devicesChanged
	this.Registry.OnActiveChanged = this.activeChanged

	if err := this.control.Initialize(this.Orchestrator.HandleExternalState); err != nil {
		return err
	}
	if err := this.Orchestrator.Initialize(); err != nil {
		return err
	}
	if err := this.Feedback.Initialize(&this.config.Feedback, this.alwaysSaveConf); err != nil {
		return err
	}

	if err := this.saveConf(false); err != nil {
		return err
	}

	this.initialized = true
	success = true
	return nil
}

func (this *App) Run(ctx context.Context) error {
	if err := this.Registry.Initialize(); err != nil {
		return err
	}

	this.present(this.Orchestrator.State(), mute.FeedbackShow)

	if v := this.config.LastDeviceId; v != "" {
		if err := this.Registry.SetActive(v); err != nil {
			if dnf, ok := common.AsError[hardware.DeviceNotFoundError](err); ok {
				log.With("device", dnf.Identifier).
					Info("Previously active device is currently absent; waiting for a new selection.")
			} else {
				return err
			}
		}
	}

	for {
		log.With("interval", this.config.RefreshInterval).
			Debug("Wait until the next refresh...")
		select {
		case <-ctx.Done():
			log.Debug("Refresh loop interrupted.")
			return nil
		case <-time.After(this.config.RefreshInterval):
		}

		if err := this.Feedback.Update(); err != nil {
			log.WithError(err).
				Error("Cannot update feedback.")
			continue
		}
		for _, f := range this.OtherFeedbacks {
			if err := f.Update(); err != nil {
				log.WithError(err).
					Warn("Cannot update feedback.")
			}
		}

		this.present(this.Orchestrator.State(), mute.FeedbackShow)
	}
}

// ToggleMute is the manual command surface, wired to UI elements like
// the tray menu. It blocks until the mutation was processed.
func (this *App) ToggleMute(ctx context.Context) error {
	return this.Orchestrator.Toggle(ctx)
}

func (this *App) Dispose() (rErr error) {
	record := func(err error) {
		if err != nil && rErr == nil {
			rErr = err
		}
	}

	record(this.Registry.Dispose())
	record(this.Orchestrator.Dispose())

	if this.initialized {
		// Leave the microphone as it is, but turn the presented state dark.
		this.present(mute.StateUnknown, mute.FeedbackShow)
		this.initialized = false
	}

	record(this.Feedback.Dispose())
	if c := this.control; c != nil {
		record(c.Dispose())
		this.control = nil
	}

	return
}

func (this *App) present(state mute.State, kind mute.FeedbackKind) {
	show := func(f feedback.Feedback) error {
		if kind == mute.FeedbackFlash {
			return f.Flash(state)
		}
		return f.Show(state)
	}

	if err := show(&this.Feedback); err != nil {
		log.WithError(err).
			With("state", state).
			Error("Cannot present mute state.")
	}
	for _, f := range this.OtherFeedbacks {
		if err := show(f); err != nil {
			log.WithError(err).
				With("state", state).
				Warn("Cannot present mute state.")
		}
	}
}

func (this *App) devicesChanged(vs hardware.Descriptors) {
	if f := this.OnDevicesChanged; f != nil {
		f(vs)
	}
}

func (this *App) activeChanged(v *hardware.Descriptor) {
	// Automatic clears (teardown, a device vanishing between refreshes)
	// must not erase the stored selection; only an activation or an
	// explicit DeselectDevice writes it.
	if v != nil {
		this.persistLastDevice(v.Identifier)
	}

	if f := this.OnActiveChanged; f != nil {
		f(v)
	}
}

// DeselectDevice clears the active device on behalf of the user. Unlike
// the automatic clears this also persists the empty selection, so the
// next start does not re-offer the previously active device.
func (this *App) DeselectDevice() {
	this.Registry.ClearActive()
	this.persistLastDevice("")
}

func (this *App) persistLastDevice(id string) {
	this.configMutex.Lock()
	changed := this.config.LastDeviceId != id
	this.config.LastDeviceId = id
	this.configMutex.Unlock()

	if changed {
		if err := this.saveConf(true); err != nil {
			log.WithError(err).
				Warn("Cannot persist active device selection.")
		}
	}
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	this.configMutex.Lock()
	defer this.configMutex.Unlock()

	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
			// Ok, we should save...
		} else if err != nil {
			return err
		} else {
			// Does exist, skip...
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}
