package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/redvelvet/companion/internal/api"
	"github.com/redvelvet/companion/internal/balance"
	"github.com/redvelvet/companion/internal/catalog"
	"github.com/redvelvet/companion/internal/wire"
)

// inlineExec runs submitted work immediately, making the async flow
// deterministic for tests.
type inlineExec struct{}

func (inlineExec) Submit(fn func()) { fn() }
func (inlineExec) Post(fn func())   { fn() }

// queueExec collects work so tests can control completion order.
type queueExec struct{ tasks []func() }

func (q *queueExec) Submit(fn func()) { q.tasks = append(q.tasks, fn) }
func (q *queueExec) Post(fn func())   { q.tasks = append(q.tasks, fn) }

func (q *queueExec) drain() {
	for len(q.tasks) > 0 {
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		fn()
	}
}

type fakeBackend struct {
	sessionID    string
	sessionErr   error
	sessionCalls int

	reply     wire.ChatReply
	replyErr  error
	sendCalls int

	deviceBalance      int
	deviceBalanceErr   error
	deviceBalanceCalls int
}

func (f *fakeBackend) FetchGuestSession(ctx context.Context) (string, error) {
	f.sessionCalls++
	return f.sessionID, f.sessionErr
}

func (f *fakeBackend) SendChatMessage(ctx context.Context, companionID int, text string) (wire.ChatReply, error) {
	f.sendCalls++
	return f.reply, f.replyErr
}

func (f *fakeBackend) FetchDeviceBalance(ctx context.Context) (int, error) {
	f.deviceBalanceCalls++
	return f.deviceBalance, f.deviceBalanceErr
}

type recordingDisplay struct {
	messages    []Message
	typingShown int
	typingHides int
}

func (d *recordingDisplay) MessageAppended(msg Message) { d.messages = append(d.messages, msg) }
func (d *recordingDisplay) TypingShown()                { d.typingShown++ }
func (d *recordingDisplay) TypingHidden()               { d.typingHides++ }

func isabella() catalog.Companion {
	c, _ := catalog.ByID(3)
	return c
}

func newInlineController(backend *fakeBackend, display *recordingDisplay, bal *balance.Manager) *Controller {
	return NewController(backend, inlineExec{}, inlineExec{}, display, bal, isabella())
}

func TestSendSuccess(t *testing.T) {
	backend := &fakeBackend{
		sessionID: "sess-1",
		reply:     wire.ChatReply{Reply: "hello!", RemainingDiamonds: wire.Field{Raw: "19", OK: true}},
	}
	display := &recordingDisplay{}
	bal := balance.NewManager(25)
	c := newInlineController(backend, display, bal)

	c.Send("hi")

	if len(display.messages) != 2 {
		t.Fatalf("transcript has %d entries, want 2", len(display.messages))
	}
	if !display.messages[0].FromUser || display.messages[0].Text != "hi" {
		t.Errorf("first entry = %+v, want user \"hi\"", display.messages[0])
	}
	if display.messages[1].FromUser || display.messages[1].Text != "hello!" {
		t.Errorf("second entry = %+v, want companion \"hello!\"", display.messages[1])
	}
	if bal.Current() != 19 {
		t.Errorf("balance = %d, want 19", bal.Current())
	}
	if display.typingShown != 1 || display.typingHides != 1 {
		t.Errorf("typing indicator shown %d / hidden %d, want 1/1", display.typingShown, display.typingHides)
	}
	if c.State() != Ready {
		t.Errorf("state = %v, want Ready", c.State())
	}
}

func TestSendNeverDeductsLocally(t *testing.T) {
	// The server says 24 even though a "cost" of 1 from 25 would be 24 too;
	// use a value that can't be produced by local subtraction.
	backend := &fakeBackend{
		sessionID: "s",
		reply:     wire.ChatReply{Reply: "hey", RemainingDiamonds: wire.Field{Raw: "7", OK: true}},
	}
	bal := balance.NewManager(25)
	c := newInlineController(backend, &recordingDisplay{}, bal)

	c.Send("hi")

	if bal.Current() != 7 {
		t.Errorf("balance = %d, want server-reported 7", bal.Current())
	}
}

func TestSendInsufficientBalance(t *testing.T) {
	backend := &fakeBackend{sessionID: "s", replyErr: api.ErrInsufficientBalance}
	display := &recordingDisplay{}
	bal := balance.NewManager(25)
	c := newInlineController(backend, display, bal)

	c.Send("hi")

	if bal.Current() != 25 {
		t.Errorf("balance = %d, want unchanged 25", bal.Current())
	}
	last := display.messages[len(display.messages)-1]
	if last.Text != msgInsufficient {
		t.Errorf("last entry = %q, want insufficient-balance message", last.Text)
	}
	if display.typingHides != 1 {
		t.Errorf("typing indicator hidden %d times, want 1", display.typingHides)
	}
	if c.State() != Ready {
		t.Errorf("state = %v, want Ready (retriable after purchase)", c.State())
	}
}

func TestSendFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network error", api.ErrUnreachable, msgNetwork},
		{"server error", api.ErrRequestFailed, msgSendFailed},
		{"missing response field", api.ErrBadResponse, msgNoReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{sessionID: "s", replyErr: tt.err}
			display := &recordingDisplay{}
			bal := balance.NewManager(25)
			c := newInlineController(backend, display, bal)

			c.Send("hi")

			last := display.messages[len(display.messages)-1]
			if last.Text != tt.want {
				t.Errorf("last entry = %q, want %q", last.Text, tt.want)
			}
			if bal.Current() != 25 {
				t.Errorf("balance = %d, want unchanged 25", bal.Current())
			}
		})
	}
}

func TestSendFallsBackToFetchOnUnparsableBalance(t *testing.T) {
	backend := &fakeBackend{
		sessionID:     "s",
		reply:         wire.ChatReply{Reply: "hey", RemainingDiamonds: wire.Field{}},
		deviceBalance: 11,
	}
	bal := balance.NewManager(25)
	c := newInlineController(backend, &recordingDisplay{}, bal)

	c.Send("hi")

	if backend.deviceBalanceCalls != 1 {
		t.Errorf("device balance fetched %d times, want 1", backend.deviceBalanceCalls)
	}
	if bal.Current() != 11 {
		t.Errorf("balance = %d, want re-fetched 11", bal.Current())
	}
}

func TestSessionFetchedLazilyAndCached(t *testing.T) {
	backend := &fakeBackend{
		sessionID: "sess-1",
		reply:     wire.ChatReply{Reply: "ok", RemainingDiamonds: wire.Field{Raw: "5", OK: true}},
	}
	c := newInlineController(backend, &recordingDisplay{}, balance.NewManager(25))

	if backend.sessionCalls != 0 {
		t.Fatalf("session fetched before first send")
	}
	c.Send("one")
	c.Send("two")

	if backend.sessionCalls != 1 {
		t.Errorf("session fetched %d times, want 1 (cached)", backend.sessionCalls)
	}
	if backend.sendCalls != 2 {
		t.Errorf("sends = %d, want 2", backend.sendCalls)
	}
}

func TestSessionFailureDoesNotBlockSend(t *testing.T) {
	backend := &fakeBackend{
		sessionErr: api.ErrUnreachable,
		reply:      wire.ChatReply{Reply: "ok", RemainingDiamonds: wire.Field{Raw: "5", OK: true}},
	}
	display := &recordingDisplay{}
	c := newInlineController(backend, display, balance.NewManager(25))

	c.Send("hi")

	if backend.sendCalls != 1 {
		t.Fatalf("send did not proceed despite session failure")
	}
	if display.messages[len(display.messages)-1].Text != "ok" {
		t.Errorf("reply not appended")
	}

	// The failed fetch is retried on the next send.
	c.Send("again")
	if backend.sessionCalls != 2 {
		t.Errorf("session fetched %d times, want retry", backend.sessionCalls)
	}
}

func TestOpenAppendsGreeting(t *testing.T) {
	display := &recordingDisplay{}
	c := newInlineController(&fakeBackend{}, display, balance.NewManager(25))

	c.Open()

	if len(display.messages) != 1 {
		t.Fatalf("transcript has %d entries, want 1", len(display.messages))
	}
	want := "Hello! I'm 👩 Isabella - The Confident. How can I make your day better?"
	if display.messages[0].Text != want || display.messages[0].FromUser {
		t.Errorf("greeting = %+v", display.messages[0])
	}
}

func TestCloseDiscardsTranscriptAndRefetches(t *testing.T) {
	backend := &fakeBackend{
		sessionID:     "s",
		reply:         wire.ChatReply{Reply: "ok", RemainingDiamonds: wire.Field{Raw: "5", OK: true}},
		deviceBalance: 9,
	}
	bal := balance.NewManager(25)
	c := newInlineController(backend, &recordingDisplay{}, bal)

	c.Open()
	c.Send("hi")
	c.Close()

	if c.State() != Closed {
		t.Errorf("state = %v, want Closed", c.State())
	}
	if len(c.Transcript()) != 0 {
		t.Errorf("transcript not discarded: %d entries", len(c.Transcript()))
	}
	if backend.deviceBalanceCalls != 1 {
		t.Errorf("device balance fetched %d times on close, want 1", backend.deviceBalanceCalls)
	}
	if bal.Current() != 9 {
		t.Errorf("balance = %d, want reconciled 9", bal.Current())
	}

	// Sends after Close are ignored.
	c.Send("too late")
	if backend.sendCalls != 1 {
		t.Errorf("send went out after Close")
	}
}

// A send still in flight when the screen closes must not touch the
// transcript, but its server-reported balance still lands.
func TestLateCompletionAppliesBalanceOnly(t *testing.T) {
	q := &queueExec{}
	backend := &fakeBackend{
		sessionID: "s",
		reply:     wire.ChatReply{Reply: "late", RemainingDiamonds: wire.Field{Raw: "3", OK: true}},
		// The refresh Close triggers must not mask the in-flight result.
		deviceBalanceErr: errors.New("offline"),
	}
	display := &recordingDisplay{}
	bal := balance.NewManager(25)
	c := NewController(backend, q, q, display, bal, isabella())

	c.Send("hi") // queued, not yet completed
	c.Close()
	appended := len(display.messages)

	q.drain()

	if len(display.messages) != appended {
		t.Errorf("late completion appended to a closed transcript")
	}
	if bal.Current() != 3 {
		t.Errorf("balance = %d, want late-applied 3", bal.Current())
	}
}
