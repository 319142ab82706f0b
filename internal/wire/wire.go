// Package wire decodes backend response bodies into typed records.
//
// Missing or malformed fields are soft failures by construction: every
// lookup yields a Field whose OK flag says whether the value was present,
// and the Decode functions report success instead of returning errors.
// Bodies that are not valid JSON fall back to a lenient single-level scan
// so that truncated or junk-wrapped responses can still be salvaged.
package wire

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/redvelvet/companion/internal/jsonfield"
)

// Field is the tagged result of a single field lookup.
type Field struct {
	Raw string
	OK  bool
}

// Int parses the field as an integer. Returns false on absent or
// non-numeric values.
func (f Field) Int() (int, bool) {
	if !f.OK {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.Raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool reports whether the field holds the literal "true" (any case).
// Absent or non-boolean values read as false.
func (f Field) Bool() bool {
	return f.OK && strings.EqualFold(strings.TrimSpace(f.Raw), "true")
}

// Lookup finds a top-level scalar field in body. Valid JSON is parsed
// properly (escapes and nesting handled); anything else goes through the
// lenient scan.
func Lookup(body, key string) Field {
	if gjson.Valid(body) {
		res := gjson.Get(body, key)
		if !res.Exists() {
			return Field{}
		}
		return Field{Raw: res.String(), OK: true}
	}
	raw := jsonfield.Extract(body, key)
	return Field{Raw: raw, OK: raw != ""}
}

// GuestSession is the /api/guest/session response.
type GuestSession struct {
	SessionID string
}

// DecodeGuestSession extracts the server-issued session id.
func DecodeGuestSession(body string) (GuestSession, bool) {
	f := Lookup(body, "sessionId")
	if !f.OK || f.Raw == "" {
		return GuestSession{}, false
	}
	return GuestSession{SessionID: f.Raw}, true
}

// DeviceSession is the /api/mobile/device-session response.
type DeviceSession struct {
	Diamonds              int
	WelcomeAlreadyGranted bool
}

// DecodeDeviceSession requires a numeric messageDiamonds field; the welcome
// flag is best-effort and defaults to false.
func DecodeDeviceSession(body string) (DeviceSession, bool) {
	diamonds, ok := Lookup(body, "messageDiamonds").Int()
	if !ok {
		return DeviceSession{}, false
	}
	return DeviceSession{
		Diamonds:              diamonds,
		WelcomeAlreadyGranted: Lookup(body, "hasReceivedWelcomeDiamonds").Bool(),
	}, true
}

// DecodeBalance extracts the diamonds field from a balance response.
func DecodeBalance(body string) (int, bool) {
	return Lookup(body, "diamonds").Int()
}

// ChatReply is the /api/guest/chat success response. RemainingDiamonds stays
// a Field: the server has been seen returning it both as a bare number and
// as a quoted string, and it may be absent entirely.
type ChatReply struct {
	Reply             string
	RemainingDiamonds Field
}

// DecodeChatReply requires the response field to be present.
func DecodeChatReply(body string) (ChatReply, bool) {
	reply := Lookup(body, "response")
	if !reply.OK {
		return ChatReply{}, false
	}
	return ChatReply{
		Reply:             reply.Raw,
		RemainingDiamonds: Lookup(body, "remainingDiamonds"),
	}, true
}
