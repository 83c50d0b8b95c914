// Package hue drives Philips Hue lights as an on-air indicator: the
// matching lights are switched on (in the configured color) while the
// microphone is unmuted and off while it is muted. A flash additionally
// triggers the bridge's alert pulse so a transient push-to-talk change
// is visible even when the standing state does not change afterwards.
package hue

import (
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/mute-switch/pkg/credentials"
	"github.com/blaubaer/mute-switch/pkg/feedback"
	"github.com/blaubaer/mute-switch/pkg/mute"
)

const appName = "github.com/blaubaer/mute-switch"

type Hue struct {
	conf         *Configuration
	saveConfFunc func() error

	lights      []huego.Light
	groups      []huego.Group
	credentials credentials.Credentials
	mutex       sync.Mutex
}

func (this *Hue) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	v, err := this.resolveCredentials()
	if err != nil {
		return err
	}
	this.credentials = v

	if err := this.Update(); err != nil {
		return err
	}

	return nil
}

func (this *Hue) Dispose() error {
	this.conf = nil
	this.saveConfFunc = nil
	return nil
}

func (this *Hue) GetType() feedback.Type {
	return feedback.TypeHue
}

func (this *Hue) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	lights, err := this.discoverLights(bridge)
	if err != nil {
		return err
	}
	groups, err := this.discoverGroups(bridge)
	if err != nil {
		return err
	}

	this.lights = lights
	this.groups = groups

	return nil
}

func (this *Hue) Show(state mute.State) error {
	return this.ensure(state, false)
}

func (this *Hue) Flash(state mute.State) error {
	return this.ensure(state, true)
}

func (this *Hue) ensure(state mute.State, alert bool) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}
	if err := this.ensureLights(bridge, state, alert); err != nil {
		return err
	}
	if err := this.ensureGroups(bridge, state, alert); err != nil {
		return err
	}
	return nil
}

func (this *Hue) discoverLights(bridge *huego.Bridge) (result []huego.Light, _ error) {
	if this.conf.Kinds.Has(KindLight) {
		candidates, err := bridge.GetLights()
		if err != nil {
			return nil, fmt.Errorf("cannot discover lights of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) discoverGroups(bridge *huego.Bridge) (result []huego.Group, _ error) {
	if this.conf.Kinds.Has(KindGroup) {
		candidates, err := bridge.GetGroups()
		if err != nil {
			return nil, fmt.Errorf("cannot discover groups of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) ensureLights(bridge *huego.Bridge, state mute.State, alert bool) error {
	for i, v := range this.lights {
		if err := this.ensureLight(bridge, state, alert, &v); err != nil {
			return err
		}
		this.lights[i] = v
	}
	return nil
}

func (this *Hue) ensureGroups(bridge *huego.Bridge, state mute.State, alert bool) error {
	for i, v := range this.groups {
		if err := this.ensureGroup(bridge, state, alert, &v); err != nil {
			return err
		}
		this.groups[i] = v
	}
	return nil
}

func (this *Hue) ensureState(state mute.State, alert bool, title string, hueState *huego.State) (*huego.State, error) {
	switch state {
	case mute.StateUnmuted:
		if alert || !hueState.On || hueState.Bri != this.conf.Brightness || hueState.Hue != this.conf.Hue || hueState.Sat != this.conf.Saturation {
			next := &huego.State{
				On:  true,
				Bri: this.conf.Brightness,
				Hue: this.conf.Hue,
				Sat: this.conf.Saturation,

				Ct: 0,
			}
			if alert {
				next.Alert = "select"
			}
			return next, nil
		}
	case mute.StateMuted, mute.StateUnknown:
		if hueState.On {
			next := &huego.State{
				On: false,
			}
			if alert {
				next.Alert = "select"
			}
			return next, nil
		}
	default:
		return nil, fmt.Errorf("cannot ensure hue light state for %s: %v", title, state)
	}
	return nil, nil
}

func (this *Hue) ensureLight(bridge *huego.Bridge, state mute.State, alert bool, v *huego.Light) error {
	if newState, err := this.ensureState(state, alert, fmt.Sprintf("light %q#%d", v.Name, v.ID), v.State); err != nil {
		return err
	} else if newState != nil {
		if _, err := bridge.SetLightState(v.ID, *newState); err != nil {
			return fmt.Errorf("cannot switch to hue light state %v for light %q#%d: %w", state, v.Name, v.ID, err)
		}
		v.State = &(*newState)
	}
	return nil
}

func (this *Hue) ensureGroup(bridge *huego.Bridge, state mute.State, alert bool, v *huego.Group) error {
	if newState, err := this.ensureState(state, alert, fmt.Sprintf("group %q#%d", v.Name, v.ID), v.State); err != nil {
		return err
	} else if newState != nil {
		if _, err := bridge.SetGroupState(v.ID, *newState); err != nil {
			return fmt.Errorf("cannot switch to hue light state %v for group %q#%d: %w", state, v.Name, v.ID, err)
		}
		v.State = &(*newState)
	}
	return nil
}

func (this *Hue) bridge() (*huego.Bridge, error) {
	v := this.credentials
	if v.IsZero() {
		return nil, fmt.Errorf("not paired with hue bridge")
	}
	return huego.New(v.Bridge, v.User), nil
}

func (this *Hue) resolveCredentials() (credentials.Credentials, error) {
	if u := this.conf.User; u != "" {
		bridge, err := this.discoverBridge()
		if err != nil {
			return credentials.Credentials{}, err
		}

		return credentials.Credentials{
			Bridge: bridge.Host,
			User:   u,
		}, nil
	}

	if this.conf.Pair {
		v, err := this.pair()
		if err != nil {
			return credentials.Credentials{}, err
		}
		return v, nil
	}

	v, err := this.readCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}

	if !v.IsZero() {
		return v, nil
	}

	return this.pair()
}

func (this *Hue) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	return huego.Discover()
}

func (this *Hue) pair() (credentials.Credentials, error) {
	bridge, err := this.discoverBridge()
	if err != nil {
		return credentials.Credentials{}, err
	}

	for {
		log.Info("Wait for hue link button been pressed...")
		user, err := bridge.CreateUser(appName)
		if apiErr, ok := err.(*huego.APIError); ok && apiErr.Type == 101 && apiErr.Description == "link button not pressed" {
			time.Sleep(1 * time.Second)
			continue
		} else if err != nil {
			return credentials.Credentials{}, fmt.Errorf("was not able to pair with %s: %w", bridge.Host, err)
		} else {
			v := credentials.Credentials{
				Bridge: bridge.Host,
				User:   user,
			}

			if err := this.storeCredentials(v); err != nil {
				log.WithError(err).
					Warn("Cannot store credentials. The app will work now, but next time the pairing might be required again.")
			}

			log.With("bridge", bridge.Host).
				Info("Successful paired.")
			return v, nil
		}
	}
}

func (this *Hue) readCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.Bridge == "" {
		v.Bridge = this.conf.Bridge
	}
	if v.User == "" {
		v.User = this.conf.User
	}

	return v, nil
}

func (this *Hue) storeCredentials(v credentials.Credentials) error {
	supported, err := v.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Bridge = v.Bridge
	this.conf.User = v.User
	return this.saveConfFunc()
}
