// Package app wires the client together: launch-time device registration and
// connection test, screen-driven balance syncs, and chat screen lifecycle.
// All state lives on the dispatch loop; the renderer only ever receives
// notifications from there.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redvelvet/companion/internal/api"
	"github.com/redvelvet/companion/internal/balance"
	"github.com/redvelvet/companion/internal/catalog"
	"github.com/redvelvet/companion/internal/chat"
	"github.com/redvelvet/companion/internal/config"
	"github.com/redvelvet/companion/internal/dispatch"
	"github.com/redvelvet/companion/internal/logging"
	"github.com/redvelvet/companion/internal/wire"
)

var log = logging.Get()

// Screen identifies a top-level view.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenChats
	ScreenSettings
	ScreenPremium
	ScreenChat
)

// Status literals shown while registering the device.
const (
	statusConnecting     = "🔄 Connecting to server..."
	statusWelcome        = "🎉 Welcome! You received 25 diamonds!"
	statusRegisteredFmt  = "✅ Device registered! %d diamonds available"
	statusRegisterFailed = "❌ Device registration failed"
	statusTrackingError  = "❌ Diamond tracking error"
	statusUnreachable    = "❌ Device session unreachable"
	statusSelectedFmt    = "Selected: %s"
	statusComingSoon     = "Purchase feature coming soon!"
	statusSubscribeSoon  = "Subscription feature coming soon!"
)

// Renderer is everything the app pushes at the UI.
type Renderer interface {
	chat.Display
	StatusChanged(status string)
	BalanceChanged(diamonds int)
}

// Backend is the slice of the API client the app drives.
type Backend interface {
	chat.Backend
	Ping(ctx context.Context) error
	RegisterDeviceSession(ctx context.Context) (wire.DeviceSession, error)
	FetchGuestBalance(ctx context.Context) (int, error)
}

// App owns the dispatch plumbing, the balance cell, and the active chat
// controller. Exported methods may be called from any goroutine; each posts
// onto the loop.
type App struct {
	cfg      *config.Config
	backend  Backend
	renderer Renderer
	balance  *balance.Manager
	pool     *dispatch.Pool
	loop     *dispatch.Loop

	screen Screen
	chat   *chat.Controller
}

// New builds the app and starts its dispatch loop. Shutdown stops it.
func New(cfg *config.Config, backend Backend, renderer Renderer) *App {
	a := &App{
		cfg:      cfg,
		backend:  backend,
		renderer: renderer,
		balance:  balance.NewManager(cfg.StartingDiamonds),
		pool:     dispatch.NewPool(cfg.WorkerPoolSize),
		loop:     dispatch.NewLoop(),
		screen:   ScreenHome,
	}
	a.balance.Listen(renderer.BalanceChanged)
	a.loop.Start()
	return a
}

// Launch registers the device session and fires the connection test. Neither
// blocks the caller; results arrive as status and balance notifications.
func (a *App) Launch() {
	a.loop.Post(func() {
		a.renderer.StatusChanged(statusConnecting)
		a.renderer.BalanceChanged(a.balance.Current())
		a.registerDevice()
		a.testConnection()
	})
}

// ShowScreen switches the top-level view. Returning to home re-checks the
// server and re-syncs the guest balance.
func (a *App) ShowScreen(s Screen) {
	a.loop.Post(func() {
		if a.screen == ScreenChat && s != ScreenChat && a.chat != nil {
			a.chat.Close()
			a.chat = nil
		}
		a.screen = s
		if s == ScreenHome {
			a.testConnection()
		}
	})
}

// EnterChat opens a chat screen for the companion, greets, and re-syncs the
// device balance so the counter is fresh.
func (a *App) EnterChat(companionID int) {
	a.loop.Post(func() {
		c, ok := catalog.ByID(companionID)
		if !ok {
			log.Error("Unknown companion id %d", companionID)
			return
		}
		a.renderer.StatusChanged(fmt.Sprintf(statusSelectedFmt, c.DisplayName))
		a.screen = ScreenChat
		a.chat = chat.NewController(a.backend, a.pool, a.loop, a.renderer, a.balance, c)
		a.chat.Open()
		a.syncDeviceBalance()
	})
}

// LeaveChat closes the active chat screen and returns home.
func (a *App) LeaveChat() {
	a.loop.Post(func() {
		if a.chat != nil {
			a.chat.Close()
			a.chat = nil
		}
		a.screen = ScreenHome
	})
}

// SendMessage forwards one outgoing message to the active chat screen.
func (a *App) SendMessage(text string) {
	a.loop.Post(func() {
		if a.chat == nil {
			return
		}
		a.chat.Send(text)
	})
}

// PurchasePackage posts the not-yet-implemented purchase status.
func (a *App) PurchasePackage(pkg catalog.DiamondPackage) {
	a.loop.Post(func() { a.renderer.StatusChanged(statusComingSoon) })
}

// Subscribe posts the not-yet-implemented subscription status.
func (a *App) Subscribe() {
	a.loop.Post(func() { a.renderer.StatusChanged(statusSubscribeSoon) })
}

// ActivateSetting posts the item's status line. There is no persisted
// preference store; the rows are display-only.
func (a *App) ActivateSetting(item catalog.SettingsItem) {
	a.loop.Post(func() { a.renderer.StatusChanged(item.Status) })
}

// Shutdown stops the dispatch plumbing. In-flight network calls finish;
// their completions are dropped.
func (a *App) Shutdown() {
	a.loop.Stop()
	a.pool.Close()
}

// registerDevice asks the server for the device session. A fresh device gets
// its welcome grant server-side; the client reflects whatever comes back.
func (a *App) registerDevice() {
	a.pool.Submit(func() {
		s, err := a.backend.RegisterDeviceSession(context.Background())
		a.loop.Post(func() { a.finishRegister(s, err) })
	})
}

func (a *App) finishRegister(s wire.DeviceSession, err error) {
	switch {
	case err == nil:
		a.balance.Apply(s.Diamonds)
		if s.WelcomeAlreadyGranted {
			a.renderer.StatusChanged(fmt.Sprintf(statusRegisteredFmt, s.Diamonds))
		} else {
			a.renderer.StatusChanged(statusWelcome)
		}
	case errors.Is(err, api.ErrBadResponse):
		a.renderer.StatusChanged(statusTrackingError)
	case errors.Is(err, api.ErrUnreachable):
		a.renderer.StatusChanged(statusUnreachable)
	default:
		log.Error("Device registration failed: %v", err)
		a.renderer.StatusChanged(statusRegisterFailed)
	}
}

// testConnection pings the server and, on success, syncs the guest balance.
// Failure only logs; the app stays usable offline with the last known count.
func (a *App) testConnection() {
	a.pool.Submit(func() {
		if err := a.backend.Ping(context.Background()); err != nil {
			log.Error("Connection test failed: %v", err)
			return
		}
		n, err := a.backend.FetchGuestBalance(context.Background())
		if err != nil {
			log.Error("Guest balance sync failed: %v", err)
			return
		}
		a.loop.Post(func() { a.balance.Apply(n) })
	})
}

// syncDeviceBalance refreshes the counter from the device-scoped endpoint.
func (a *App) syncDeviceBalance() {
	a.pool.Submit(func() {
		n, err := a.backend.FetchDeviceBalance(context.Background())
		if err != nil {
			log.Error("Device balance sync failed: %v", err)
			return
		}
		a.loop.Post(func() { a.balance.Apply(n) })
	})
}
