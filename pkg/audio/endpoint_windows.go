//go:build windows

package audio

import (
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

type endpointPlatform struct {
	mutex sync.Mutex
	aev   *wca.IAudioEndpointVolume
	stop  chan struct{}
	done  chan struct{}
}

func (this *Endpoint) initialize(notify func(mute.State)) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.aev != nil {
		return nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("failed to initialize ole: %v", err)
	}

	success := false
	defer func() {
		if !success {
			ole.CoUninitialize()
		}
	}()

	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return fmt.Errorf("cannot create IMMDeviceEnumerator instance: %w", err)
	}
	defer de.Release()

	var mmd *wca.IMMDevice
	if err := de.GetDefaultAudioEndpoint(wca.ECapture, wca.EConsole, &mmd); err != nil {
		return fmt.Errorf("cannot resolve default capture endpoint: %w", err)
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return fmt.Errorf("cannot activate endpoint volume of default capture endpoint: %w", err)
	}

	this.aev = aev
	this.stop = make(chan struct{})
	this.done = make(chan struct{})
	go this.watch(notify)

	success = true
	return nil
}

func (this *Endpoint) dispose() error {
	this.mutex.Lock()
	if this.aev == nil {
		this.mutex.Unlock()
		return nil
	}
	close(this.stop)
	this.mutex.Unlock()

	<-this.done

	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.aev.Release()
	this.aev = nil
	ole.CoUninitialize()

	return nil
}

func (this *Endpoint) state() (mute.State, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.stateLocked()
}

func (this *Endpoint) stateLocked() (mute.State, error) {
	if this.aev == nil {
		return mute.StateUnknown, fmt.Errorf("not initialized")
	}
	var muted bool
	if err := this.aev.GetMute(&muted); err != nil {
		return mute.StateUnknown, fmt.Errorf("cannot query endpoint mute flag: %w", err)
	}
	if muted {
		return mute.StateMuted, nil
	}
	return mute.StateUnmuted, nil
}

func (this *Endpoint) setMuted(v bool) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.aev == nil {
		return fmt.Errorf("not initialized")
	}
	if err := this.aev.SetMute(v, nil); err != nil {
		return fmt.Errorf("cannot set endpoint mute flag to %v: %w", v, err)
	}
	return nil
}

// watch polls the endpoint and reports every change; that covers mute
// changes caused by other applications or by this process itself.
func (this *Endpoint) watch(notify func(mute.State)) {
	defer close(this.done)

	interval := this.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	last := mute.StateUnknown
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-this.stop:
			return
		case <-t.C:
		}

		state, err := this.state()
		if err != nil {
			log.WithError(err).
				Debug("Cannot poll endpoint mute state.")
			continue
		}
		if state != last {
			last = state
			if notify != nil {
				notify(state)
			}
		}
	}
}
