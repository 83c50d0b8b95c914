package facade

import (
	"fmt"
	"sync"

	"github.com/blaubaer/mute-switch/pkg/feedback"
	"github.com/blaubaer/mute-switch/pkg/feedback/hue"
	"github.com/blaubaer/mute-switch/pkg/mute"
)

// Facade holds the one configured additional feedback sink. TypeOff is
// valid and results in a facade which swallows everything.
type Facade struct {
	feedback.Feedback

	lock sync.RWMutex
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Feedback != nil {
		return nil
	}

	switch conf.Type {
	case feedback.TypeOff, feedback.TypeSystray:
		// The tray icon is always driven by the application; nothing
		// additional to instantiate.
	case feedback.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return err
		}
		this.Feedback = &buf
	default:
		return fmt.Errorf("unsupported feedback type: %v", conf.Type)
	}

	return nil
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Feedback = nil
	}()

	if v := this.Feedback; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) Show(state mute.State) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Feedback; v != nil {
		return v.Show(state)
	}
	return nil
}

func (this *Facade) Flash(state mute.State) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Feedback; v != nil {
		return v.Flash(state)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Feedback; v != nil {
		return v.Update()
	}
	return nil
}

func (this *Facade) GetType() feedback.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Feedback; v != nil {
		return v.GetType()
	}

	return feedback.TypeOff
}
