// Package chat drives one chat screen: guest-session acquisition, message
// exchange, the typing-indicator lifecycle, and balance reconciliation after
// each send.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/redvelvet/companion/internal/api"
	"github.com/redvelvet/companion/internal/balance"
	"github.com/redvelvet/companion/internal/catalog"
	"github.com/redvelvet/companion/internal/logging"
	"github.com/redvelvet/companion/internal/wire"
)

var log = logging.Get()

// State tracks the controller through its lifecycle.
type State int

const (
	Idle State = iota
	SessionPending
	Ready
	Sending
	Closed
)

// User-visible transcript entries per failure kind.
const (
	msgInsufficient = "❌ Not enough diamonds! Please purchase more diamonds to continue."
	msgSendFailed   = "❌ Failed to send message. Please try again."
	msgNetwork      = "❌ Network error. Please check your connection."
	msgNoReply      = "❌ No response received from AI"
)

// Message is one transcript entry.
type Message struct {
	ID       string
	Text     string
	FromUser bool
}

// Display is the slice of the renderer the controller talks to.
type Display interface {
	MessageAppended(msg Message)
	TypingShown()
	TypingHidden()
}

// Backend is the slice of the API client the controller drives.
type Backend interface {
	FetchGuestSession(ctx context.Context) (string, error)
	SendChatMessage(ctx context.Context, companionID int, text string) (wire.ChatReply, error)
	FetchDeviceBalance(ctx context.Context) (int, error)
}

// Submitter queues work onto the background worker pool.
type Submitter interface {
	Submit(fn func())
}

// Poster delivers completions back to the UI-affinity loop.
type Poster interface {
	Post(fn func())
}

// Controller is the per-chat-screen state machine. All methods must be
// called from the UI-affinity loop; completions are posted back to it.
type Controller struct {
	backend   Backend
	pool      Submitter
	loop      Poster
	display   Display
	balance   *balance.Manager
	companion catalog.Companion

	state        State
	sessionID    string
	sessionAsked bool
	transcript   []Message
}

// NewController builds a controller for one companion's chat screen.
func NewController(backend Backend, pool Submitter, loop Poster, display Display, bal *balance.Manager, companion catalog.Companion) *Controller {
	return &Controller{
		backend:   backend,
		pool:      pool,
		loop:      loop,
		display:   display,
		balance:   bal,
		companion: companion,
		state:     Idle,
	}
}

// Open appends the companion greeting.
func (c *Controller) Open() {
	c.append(Message{
		ID:   uuid.NewString(),
		Text: "Hello! I'm " + c.companion.DisplayName + ". How can I make your day better?",
	})
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Companion returns the catalog entry this screen chats with.
func (c *Controller) Companion() catalog.Companion {
	return c.companion
}

// Transcript returns a copy of the current transcript.
func (c *Controller) Transcript() []Message {
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send dispatches one outgoing message: the transcript is updated
// optimistically, the typing indicator comes up, and the send goes out on
// the worker pool. If no guest session is cached yet one is requested, but
// the send does not wait for it.
func (c *Controller) Send(text string) {
	if c.state == Closed {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.ensureSession()

	c.append(Message{ID: uuid.NewString(), Text: text, FromUser: true})
	c.display.TypingShown()
	c.state = Sending

	companionID := c.companion.ID
	c.pool.Submit(func() {
		reply, err := c.backend.SendChatMessage(context.Background(), companionID, text)
		c.loop.Post(func() { c.finishSend(reply, err) })
	})
}

// ensureSession lazily requests the guest session id. Failure is never
// fatal; the next send retries.
func (c *Controller) ensureSession() {
	if c.sessionID != "" || c.sessionAsked {
		return
	}
	c.sessionAsked = true
	if c.state == Idle {
		c.state = SessionPending
	}

	c.pool.Submit(func() {
		id, err := c.backend.FetchGuestSession(context.Background())
		c.loop.Post(func() {
			if err != nil {
				log.Error("Guest session fetch failed: %v", err)
				c.sessionAsked = false
			} else {
				c.sessionID = id
				log.Debug("Guest session id: %s", id)
			}
			if c.state == SessionPending {
				c.state = Ready
			}
		})
	})
}

func (c *Controller) finishSend(reply wire.ChatReply, err error) {
	if c.state == Closed {
		// The screen is gone, but a server-reported balance still lands.
		if err == nil {
			c.balance.ApplyFromField(reply.RemainingDiamonds.Raw)
		}
		return
	}

	c.display.TypingHidden()

	switch {
	case err == nil:
		c.append(Message{ID: uuid.NewString(), Text: reply.Reply})
		if !c.balance.ApplyFromField(reply.RemainingDiamonds.Raw) {
			// The reply arrived without a usable balance; reconcile
			// with a fresh fetch instead of guessing.
			log.Error("Chat reply balance did not parse: %q", reply.RemainingDiamonds.Raw)
			c.refreshBalance()
		}
	case errors.Is(err, api.ErrInsufficientBalance):
		c.append(Message{ID: uuid.NewString(), Text: msgInsufficient})
	case errors.Is(err, api.ErrUnreachable):
		c.append(Message{ID: uuid.NewString(), Text: msgNetwork})
	case errors.Is(err, api.ErrBadResponse):
		c.append(Message{ID: uuid.NewString(), Text: msgNoReply})
	default:
		c.append(Message{ID: uuid.NewString(), Text: msgSendFailed})
	}

	c.state = Ready
}

// Close discards the transcript and triggers a balance re-fetch so the prior
// screen shows a reconciled count. In-flight sends are not cancelled; their
// completions only update the balance.
func (c *Controller) Close() {
	if c.state == Closed {
		return
	}
	c.state = Closed
	c.transcript = nil
	c.refreshBalance()
}

func (c *Controller) refreshBalance() {
	c.pool.Submit(func() {
		n, err := c.backend.FetchDeviceBalance(context.Background())
		if err != nil {
			// UI keeps the last known good value.
			log.Error("Balance refresh failed: %v", err)
			return
		}
		c.loop.Post(func() { c.balance.Apply(n) })
	})
}

func (c *Controller) append(msg Message) {
	c.transcript = append(c.transcript, msg)
	c.display.MessageAppended(msg)
}
