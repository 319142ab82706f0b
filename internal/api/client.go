// Package api issues the remote operations against the companion backend.
//
// Every operation is synchronous; asynchrony and result delivery belong to
// the dispatch layer. Failures never corrupt cached state: operations return
// classified errors and leave it to the caller to decide what, if anything,
// to show the user.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redvelvet/companion/internal/logging"
	"github.com/redvelvet/companion/internal/wire"
)

var (
	// ErrRequestFailed covers non-200, non-402 responses. Retriable by
	// resubmission.
	ErrRequestFailed = errors.New("backend request failed")
	// ErrInsufficientBalance is the authoritative HTTP 402 rejection. Not
	// retriable until the balance increases.
	ErrInsufficientBalance = errors.New("insufficient diamond balance")
	// ErrUnreachable covers transport-level failures (DNS, connection
	// reset, timeout). Always retriable.
	ErrUnreachable = errors.New("network unreachable")
	// ErrBadResponse means a 200 body was missing an expected field.
	ErrBadResponse = errors.New("malformed response")
)

const (
	sessionConnectTimeout = 5 * time.Second
	sessionReadTimeout    = 10 * time.Second
	deviceConnectTimeout  = 5 * time.Second
	deviceReadTimeout     = 5 * time.Second
	chatConnectTimeout    = 10 * time.Second
	chatReadTimeout       = 15 * time.Second
)

var log = logging.Get()

// Client talks to the companion backend.
type Client struct {
	baseURL     string
	userAgent   string
	platform    string
	fingerprint string

	sessionHTTP *http.Client
	deviceHTTP  *http.Client
	chatHTTP    *http.Client
}

// NewClient creates a backend client bound to a device fingerprint.
func NewClient(baseURL, userAgent, platform, fingerprint string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   userAgent,
		platform:    platform,
		fingerprint: fingerprint,
		sessionHTTP: newHTTPClient(sessionConnectTimeout, sessionReadTimeout),
		deviceHTTP:  newHTTPClient(deviceConnectTimeout, deviceReadTimeout),
		chatHTTP:    newHTTPClient(chatConnectTimeout, chatReadTimeout),
	}
}

func newHTTPClient(connect, read time.Duration) *http.Client {
	return &http.Client{
		Timeout: connect + read,
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: connect}).DialContext,
			TLSHandshakeTimeout:   connect,
			ResponseHeaderTimeout: read,
		},
	}
}

func (c *Client) setHeaders(req *http.Request, deviceHeaders bool) {
	req.Header.Set("User-Agent", c.userAgent)
	if deviceHeaders {
		req.Header.Set("X-Device-Fingerprint", c.fingerprint)
		req.Header.Set("X-Platform", c.platform)
	}
}

func (c *Client) get(ctx context.Context, hc *http.Client, path string, deviceHeaders bool) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, "", err
	}
	c.setHeaders(req, deviceHeaders)

	log.Debug("HTTP GET %s%s", c.baseURL, path)

	resp, err := hc.Do(req)
	if err != nil {
		log.Error("HTTP GET %s failed: %v", path, err)
		return 0, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("HTTP GET %s read failed: %v", path, err)
		return 0, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	log.Debug("HTTP GET %s status: %d", path, resp.StatusCode)
	return resp.StatusCode, string(body), nil
}

// Ping tests server connectivity with the full device headers. Used at
// launch and when returning to the home screen; failure is never fatal.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.get(ctx, c.sessionHTTP, "/api/guest/session", true)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: connection test status %d", ErrRequestFailed, status)
	}
	return nil
}

// FetchGuestSession obtains a server-issued guest session id. On any failure
// the session stays unset; callers retry on a later send.
func (c *Client) FetchGuestSession(ctx context.Context) (string, error) {
	status, body, err := c.get(ctx, c.sessionHTTP, "/api/guest/session", false)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: guest session status %d", ErrRequestFailed, status)
	}

	log.Response("guest-session", body)
	s, ok := wire.DecodeGuestSession(body)
	if !ok {
		return "", fmt.Errorf("%w: guest session body has no sessionId", ErrBadResponse)
	}
	return s.SessionID, nil
}

// RegisterDeviceSession registers the fingerprint with the backend. A fresh
// device receives its one-time welcome grant server-side; the client only
// reflects whatever balance comes back.
func (c *Client) RegisterDeviceSession(ctx context.Context) (wire.DeviceSession, error) {
	status, body, err := c.get(ctx, c.deviceHTTP, "/api/mobile/device-session", true)
	if err != nil {
		return wire.DeviceSession{}, err
	}
	if status != http.StatusOK {
		return wire.DeviceSession{}, fmt.Errorf("%w: device session status %d", ErrRequestFailed, status)
	}

	log.Response("device-session", body)
	s, ok := wire.DecodeDeviceSession(body)
	if !ok {
		return wire.DeviceSession{}, fmt.Errorf("%w: device session diamonds did not parse", ErrBadResponse)
	}
	return s, nil
}

// FetchGuestBalance reads the guest-scoped diamond count.
func (c *Client) FetchGuestBalance(ctx context.Context) (int, error) {
	return c.fetchBalance(ctx, "/api/guest/diamonds", false)
}

// FetchDeviceBalance reads the device-scoped diamond count.
func (c *Client) FetchDeviceBalance(ctx context.Context) (int, error) {
	return c.fetchBalance(ctx, "/api/mobile/diamonds", true)
}

func (c *Client) fetchBalance(ctx context.Context, path string, deviceHeaders bool) (int, error) {
	status, body, err := c.get(ctx, c.deviceHTTP, path, deviceHeaders)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: balance fetch status %d", ErrRequestFailed, status)
	}

	log.Response("balance", body)
	n, ok := wire.DecodeBalance(body)
	if !ok {
		return 0, fmt.Errorf("%w: balance body has no numeric diamonds", ErrBadResponse)
	}
	return n, nil
}

type chatRequest struct {
	CompanionID int    `json:"companionId"`
	Message     string `json:"message"`
}

// SendChatMessage posts one outgoing message and returns the companion's
// reply along with the server's authoritative remaining balance.
func (c *Client) SendChatMessage(ctx context.Context, companionID int, text string) (wire.ChatReply, error) {
	payload, err := json.Marshal(chatRequest{CompanionID: companionID, Message: text})
	if err != nil {
		return wire.ChatReply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/guest/chat", bytes.NewReader(payload))
	if err != nil {
		return wire.ChatReply{}, err
	}
	c.setHeaders(req, true)
	req.Header.Set("Content-Type", "application/json")

	log.Debug("HTTP POST %s/api/guest/chat (companion: %d, message: %d bytes)", c.baseURL, companionID, len(text))

	resp, err := c.chatHTTP.Do(req)
	if err != nil {
		log.Error("Chat send failed: %v", err)
		return wire.ChatReply{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Chat response read failed: %v", err)
		return wire.ChatReply{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	log.Debug("Chat response status: %d", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		return wire.ChatReply{}, ErrInsufficientBalance
	case resp.StatusCode != http.StatusOK:
		log.Error("Chat send status %d: %s", resp.StatusCode, string(body))
		return wire.ChatReply{}, fmt.Errorf("%w: chat status %d", ErrRequestFailed, resp.StatusCode)
	}

	log.Response("chat", string(body))
	reply, ok := wire.DecodeChatReply(string(body))
	if !ok {
		return wire.ChatReply{}, fmt.Errorf("%w: chat body has no response field", ErrBadResponse)
	}
	return reply, nil
}
