//go:build windows

package audio

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	log "github.com/echocat/slf4g"
	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"github.com/shirou/gopsutil/process"

	"github.com/blaubaer/mute-switch/pkg/mute"
)

type applicationPlatform struct {
	mutex       sync.Mutex
	initialized bool
	stop        chan struct{}
	done        chan struct{}
}

func (this *Application) initialize(notify func(mute.State)) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.initialized {
		return nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("failed to initialize ole: %v", err)
	}

	this.initialized = true
	this.stop = make(chan struct{})
	this.done = make(chan struct{})
	go this.watch(notify)

	return nil
}

func (this *Application) dispose() error {
	this.mutex.Lock()
	if !this.initialized {
		this.mutex.Unlock()
		return nil
	}
	close(this.stop)
	this.mutex.Unlock()

	<-this.done

	this.mutex.Lock()
	defer this.mutex.Unlock()

	ole.CoUninitialize()
	this.initialized = false

	return nil
}

// state reports Unknown while no session of a matching process exists,
// Muted once every matching session is muted and Unmuted otherwise.
func (this *Application) state() (mute.State, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return mute.StateUnknown, fmt.Errorf("not initialized")
	}

	matched := 0
	muted := 0
	if err := this.forEachMatchingSession(func(sav *wca.ISimpleAudioVolume) error {
		var v bool
		if err := sav.GetMute(&v); err != nil {
			return fmt.Errorf("cannot query mute flag of audio session: %w", err)
		}
		matched++
		if v {
			muted++
		}
		return nil
	}); err != nil {
		return mute.StateUnknown, err
	}

	if matched == 0 {
		return mute.StateUnknown, nil
	}
	if muted == matched {
		return mute.StateMuted, nil
	}
	return mute.StateUnmuted, nil
}

func (this *Application) setMuted(v bool) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return fmt.Errorf("not initialized")
	}

	matched := 0
	if err := this.forEachMatchingSession(func(sav *wca.ISimpleAudioVolume) error {
		if err := sav.SetMute(v, nil); err != nil {
			return fmt.Errorf("cannot set mute flag of audio session to %v: %w", v, err)
		}
		matched++
		return nil
	}); err != nil {
		return err
	}

	if matched == 0 {
		return fmt.Errorf("no audio session matches %v", this.Name)
	}
	return nil
}

// forEachMatchingSession walks every active session of every active
// capture endpoint and calls fn with the session's volume interface if
// the owning process' executable name matches Name.
func (this *Application) forEachMatchingSession(fn func(*wca.ISimpleAudioVolume) error) error {
	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return fmt.Errorf("cannot create IMMDeviceEnumerator instance: %w", err)
	}
	defer de.Release()

	var collection *wca.IMMDeviceCollection
	if err := de.EnumAudioEndpoints(wca.ECapture, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		return fmt.Errorf("cannot query IMMDevices: %w", err)
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return fmt.Errorf("cannot get count of IMMDevice collection: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		if err := this.forEachMatchingSessionOfDevice(collection, i, fn); err != nil {
			return err
		}
	}
	return nil
}

func (this *Application) forEachMatchingSessionOfDevice(collection *wca.IMMDeviceCollection, deviceIndex uint32, fn func(*wca.ISimpleAudioVolume) error) error {
	var device *wca.IMMDevice
	if err := collection.Item(deviceIndex, &device); err != nil {
		return fmt.Errorf("cannot get item %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer device.Release()

	var sessionManager *wca.IAudioSessionManager2
	if err := device.Activate(wca.IID_IAudioSessionManager2, wca.CLSCTX_ALL, nil, &sessionManager); err != nil {
		return fmt.Errorf("cannot get session manager of device %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer sessionManager.Release()

	var enumerator *wca.IAudioSessionEnumerator
	if err := sessionManager.GetSessionEnumerator(&enumerator); err != nil {
		return fmt.Errorf("cannot get audio sessions of device %d: %w", deviceIndex, err)
	}
	defer enumerator.Release()

	var count int
	if err := enumerator.GetCount(&count); err != nil {
		return fmt.Errorf("cannot get count of audio sessions of device %d: %w", deviceIndex, err)
	}

	for i := 0; i < count; i++ {
		if err := this.visitSession(enumerator, i, fn); err != nil {
			return err
		}
	}
	return nil
}

func (this *Application) visitSession(sessions *wca.IAudioSessionEnumerator, sessionIndex int, fn func(*wca.ISimpleAudioVolume) error) error {
	var sessionControl *wca.IAudioSessionControl
	if err := sessions.GetSession(sessionIndex, &sessionControl); err != nil {
		return fmt.Errorf("cannot get audio session %d: %w", sessionIndex, err)
	}
	defer sessionControl.Release()

	dispatch, err := sessionControl.QueryInterface(wca.IID_IAudioSessionControl2)
	if err != nil {
		return fmt.Errorf("cannot get audio session control %d: %w", sessionIndex, err)
	}
	sessionControl2 := (*wca.IAudioSessionControl2)(unsafe.Pointer(dispatch))
	defer sessionControl2.Release()

	var pid uint32
	// Exclude system sound session
	if err := sessionControl2.IsSystemSoundsSession(); err == nil {
		return nil
	} else if err.Error() == "Incorrect function." {
		if err := sessionControl2.GetProcessId(&pid); err != nil {
			return fmt.Errorf("cannot get PID of process which holds session %d: %w", sessionIndex, err)
		}
	} else {
		return fmt.Errorf("cannot determine if audio session %d is a system session or not: %w", sessionIndex, err)
	}

	var state uint32
	if err := sessionControl.GetState(&state); err != nil {
		return fmt.Errorf("cannot get state of audio session %d: %w", sessionIndex, err)
	}
	if state != 1 {
		return nil
	}

	if !this.matchesPid(pid) {
		return nil
	}

	savDispatch, err := sessionControl2.QueryInterface(wca.IID_ISimpleAudioVolume)
	if err != nil {
		return fmt.Errorf("cannot get volume of audio session %d: %w", sessionIndex, err)
	}
	sav := (*wca.ISimpleAudioVolume)(unsafe.Pointer(savDispatch))
	defer sav.Release()

	return fn(sav)
}

func (this *Application) matchesPid(pid uint32) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		log.WithError(err).
			With("pid", pid).
			Debug("Cannot inspect process which holds an audio session; ignoring it.")
		return false
	}
	name, err := p.Name()
	if err != nil {
		log.WithError(err).
			With("pid", pid).
			Debug("Cannot resolve name of process which holds an audio session; ignoring it.")
		return false
	}
	return this.Name.MatchString(name)
}

func (this *Application) watch(notify func(mute.State)) {
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
				Debug("Cannot poll application mute state.")
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
