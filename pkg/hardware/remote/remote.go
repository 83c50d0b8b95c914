// Package remote provides hardware devices backed by a websocket
// listener. Every connected client (a phone companion, a networked foot
// pedal, ...) is one hot-pluggable device; its frames are delivered as
// raw payloads and interpreted by the transformer.
package remote

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/gorilla/websocket"

	"github.com/blaubaer/mute-switch/pkg/hardware"
)

type Provider struct {
	Configuration

	upgrader websocket.Upgrader
	server   *http.Server

	mutex    sync.Mutex
	devices  map[string]*device
	onChange func()
}

func (this *Provider) Initialize(onChange func()) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.server != nil {
		return nil
	}

	this.devices = make(map[string]*device)
	this.onChange = onChange

	if this.Listen == "" {
		log.Debug("No remote listen address configured; remote devices disabled.")
		return nil
	}

	ln, err := net.Listen("tcp", this.Listen)
	if err != nil {
		return fmt.Errorf("cannot listen for remote devices on %q: %w", this.Listen, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", this.handle)
	this.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := this.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).
				Error("Remote device listener failed.")
		}
	}()

	log.With("address", ln.Addr()).
		Info("Listening for remote devices.")

	return nil
}

func (this *Provider) Dispose() error {
	this.mutex.Lock()
	server := this.server
	this.server = nil
	devices := this.devices
	this.devices = nil
	this.mutex.Unlock()

	for _, d := range devices {
		_ = d.conn.Close()
	}
	if server != nil {
		return server.Close()
	}
	return nil
}

func (this *Provider) Devices() []hardware.Device {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	result := make([]hardware.Device, 0, len(this.devices))
	for _, d := range this.devices {
		result = append(result, d)
	}
	return result
}

func (this *Provider) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := this.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).
			With("remote", r.RemoteAddr).
			Warn("Cannot upgrade remote device connection.")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		id = conn.RemoteAddr().String()
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = id
	}

	d := &device{
		identifier: "remote:" + id,
		name:       name,
		conn:       conn,
	}

	this.mutex.Lock()
	if this.devices == nil {
		this.mutex.Unlock()
		_ = conn.Close()
		return
	}
	if previous, ok := this.devices[d.identifier]; ok {
		// Reconnect of the same identifier replaces the old connection.
		_ = previous.conn.Close()
	}
	this.devices[d.identifier] = d
	onChange := this.onChange
	this.mutex.Unlock()

	log.With("device", d.Descriptor()).
		Info("Remote device connected.")
	if onChange != nil {
		onChange()
	}

	go d.readLoop(func() {
		this.remove(d)
	})
}

func (this *Provider) remove(d *device) {
	this.mutex.Lock()
	if this.devices == nil || this.devices[d.identifier] != d {
		this.mutex.Unlock()
		return
	}
	delete(this.devices, d.identifier)
	onChange := this.onChange
	this.mutex.Unlock()

	log.With("device", d.Descriptor()).
		Info("Remote device disconnected.")
	if onChange != nil {
		onChange()
	}
}

type device struct {
	identifier string
	name       string
	conn       *websocket.Conn

	mutex   sync.RWMutex
	deliver func([]byte)
}

func (this *device) Descriptor() hardware.Descriptor {
	return hardware.Descriptor{
		Name:       this.name,
		Type:       hardware.TypeRemote,
		Identifier: this.identifier,
	}
}

func (this *device) Attach(deliver func(payload []byte)) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.deliver = deliver
	return nil
}

func (this *device) Detach() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.deliver = nil
	return nil
}

func (this *device) readLoop(onClosed func()) {
	defer onClosed()
	defer func() { _ = this.conn.Close() }()

	for {
		_, payload, err := this.conn.ReadMessage()
		if err != nil {
			return
		}
		this.send(payload)
	}
}

func (this *device) send(payload []byte) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if f := this.deliver; f != nil {
		f(payload)
	}
}
