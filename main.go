package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	_ "github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"
	"github.com/getlantern/systray"

	"github.com/blaubaer/mute-switch/pkg/app"
	"github.com/blaubaer/mute-switch/pkg/feedback"
	st "github.com/blaubaer/mute-switch/pkg/feedback/systray"
	"github.com/blaubaer/mute-switch/pkg/hardware"
)

func main() {
	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	tray := &st.Systray{
		IconMuted:   micMutedIcon,
		IconUnmuted: micLiveIcon,
		IconUnknown: micUnknownIcon,
	}

	a := app.NewApp()
	a.OtherFeedbacks = []feedback.Feedback{tray}

	cmd := kingpin.New(os.Args[0], "").
		Action(func(*kingpin.ParseContext) error {
			if err := tray.Initialize(); err != nil {
				return err
			}
			if err := a.Initialize(); err != nil {
				return err
			}
			systray.Run(func() {
				systray.SetIcon(micUnknownIcon)
				systray.SetTitle("Mute switch")
				statusMi := systray.AddMenuItem("Microphone state is unknown", "")
				statusMi.Disable()
				tray.StatusItem = statusMi
				toggleMi := systray.AddMenuItem("Toggle mute", "Mutes respectively unmutes the microphone.")
				systray.AddSeparator()
				dm := newDeviceMenu(a)
				systray.AddSeparator()
				quitMi := systray.AddMenuItem("Exit", "Exit the mute switch.")

				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()

				a.OnDevicesChanged = dm.devicesChanged
				a.OnActiveChanged = dm.activeChanged

				go func() {
					c := make(chan os.Signal, 1)
					signal.Notify(c, os.Interrupt, syscall.SIGTERM)
					for {
						select {
						case <-toggleMi.ClickedCh:
							go toggleClicked(ctx, a)
						case <-c:
							log.Info("Terminated. Going down...")
							cancel()
							return
						case <-quitMi.ClickedCh:
							log.Info("Exit clicked. Going down...")
							cancel()
							return
						}
					}
				}()

				runErr := a.Run(ctx)
				if err := a.Dispose(); err != nil {
					log.WithError(err).
						Warn("Problems while disposing.")
				}
				if runErr != nil {
					log.WithError(runErr).
						Error("Failed to run.")
					os.Exit(1)
				}
				os.Exit(0)
			}, nil)
			return nil
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("always").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

func toggleClicked(ctx context.Context, a *app.App) {
	tCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.ToggleMute(tCtx); err != nil {
		log.WithError(err).
			Error("Cannot toggle mute state.")
	}
}

// deviceMenuSlots limits how many devices the tray menu can offer at
// once. The menu items are pre-allocated because the tray library can
// only hide items, not remove them.
const deviceMenuSlots = 9

type deviceMenu struct {
	app *app.App

	none  *systray.MenuItem
	slots []*systray.MenuItem

	mutex  sync.Mutex
	bound  []string
	active string
}

func newDeviceMenu(a *app.App) *deviceMenu {
	result := &deviceMenu{
		app:   a,
		none:  systray.AddMenuItemCheckbox("No device", "Deactivates the hardware mute button.", true),
		bound: make([]string, deviceMenuSlots),
	}

	go func() {
		for range result.none.ClickedCh {
			result.app.DeselectDevice()
		}
	}()

	for i := 0; i < deviceMenuSlots; i++ {
		mi := systray.AddMenuItemCheckbox("", "", false)
		mi.Hide()
		result.slots = append(result.slots, mi)

		go func(slot int, mi *systray.MenuItem) {
			for range mi.ClickedCh {
				result.clicked(slot)
			}
		}(i, mi)
	}

	return result
}

func (this *deviceMenu) devicesChanged(vs hardware.Descriptors) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	slices.SortFunc(vs, func(a, b hardware.Descriptor) int {
		return strings.Compare(a.Identifier, b.Identifier)
	})
	if len(vs) > deviceMenuSlots {
		log.With("devices", len(vs)).
			With("slots", deviceMenuSlots).
			Warn("More devices than tray menu slots; some devices will not be selectable.")
		vs = vs[:deviceMenuSlots]
	}

	for i, mi := range this.slots {
		if i < len(vs) {
			this.bound[i] = vs[i].Identifier
			mi.SetTitle(vs[i].Name)
			mi.SetTooltip(vs[i].Identifier)
			mi.Show()
		} else {
			this.bound[i] = ""
			mi.Hide()
		}
	}

	this.applyChecksLocked()
}

func (this *deviceMenu) activeChanged(v *hardware.Descriptor) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.active = ""
	if v != nil {
		this.active = v.Identifier
	}

	this.applyChecksLocked()
}

func (this *deviceMenu) applyChecksLocked() {
	if this.active == "" {
		this.none.Check()
	} else {
		this.none.Uncheck()
	}
	for i, mi := range this.slots {
		if id := this.bound[i]; id != "" && id == this.active {
			mi.Check()
		} else {
			mi.Uncheck()
		}
	}
}

func (this *deviceMenu) clicked(slot int) {
	this.mutex.Lock()
	id := this.bound[slot]
	this.mutex.Unlock()

	if id == "" {
		return
	}
	if err := this.app.Registry.SetActive(id); err != nil {
		log.WithError(err).
			With("device", id).
			Error("Cannot activate device.")
	}
}

var (
	//go:embed assets/mic-muted.ico
	micMutedIcon []byte
	//go:embed assets/mic-live.ico
	micLiveIcon []byte
	//go:embed assets/mic-unknown.ico
	micUnknownIcon []byte
)
