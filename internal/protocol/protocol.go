// Package protocol defines the ASCII control messages joiners send to the
// hub and how each one changes a ship's controls.
package protocol

import (
	"strings"
	"unicode/utf8"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
)

// Token is the command part of a control message.
type Token string

const (
	Poll       Token = ""
	Connect    Token = "CONNECT"
	Disconnect Token = "DISCONNECT"

	Up    Token = "UP"
	Left  Token = "LEFT"
	Right Token = "RIGHT"
	Space Token = "SPACE"

	StopUp    Token = "STOP_UP"
	StopLeft  Token = "STOP_LEFT"
	StopRight Token = "STOP_RIGHT"
	StopSpace Token = "STOP_SPACE"
)

// Watch is the payload spectators send; the broadcast server ignores it.
const Watch = "WATCH"

// separator splits CONNECT from the nickname.
const separator = "@"

// Message is a parsed control datagram.
type Message struct {
	Token    Token
	Nickname string // Only set for Connect
}

// controlTokens maps each control token to the flag it drives and the
// value it sets.
var controlTokens = map[Token]struct {
	flag func(*object.Ship, bool)
	on   bool
}{
	Up:        {setThrust, true},
	Left:      {setLeft, true},
	Right:     {setRight, true},
	Space:     {(*object.Ship).SetFire, true},
	StopUp:    {setThrust, false},
	StopLeft:  {setLeft, false},
	StopRight: {setRight, false},
	StopSpace: {(*object.Ship).SetFire, false},
}

func setThrust(s *object.Ship, on bool) { s.Thrust = on }
func setLeft(s *object.Ship, on bool)   { s.Left = on }
func setRight(s *object.Ship, on bool)  { s.Right = on }

// Parse decodes a datagram payload. Anything unrecognized comes back as a
// Message whose token is not Known; callers treat it like a poll.
func Parse(payload []byte) Message {
	raw := strings.TrimRight(string(payload), "\r\n\x00")
	cmd, rest, found := strings.Cut(raw, separator)
	msg := Message{Token: Token(cmd)}
	if msg.Token == Connect {
		if !found {
			msg.Token = Token(raw)
			return msg
		}
		msg.Nickname = rest
	}
	return msg
}

// Known reports whether t is part of the protocol.
func (t Token) Known() bool {
	switch t {
	case Poll, Connect, Disconnect:
		return true
	}
	_, ok := controlTokens[t]
	return ok
}

// IsControl reports whether t changes a ship control flag.
func (t Token) IsControl() bool {
	_, ok := controlTokens[t]
	return ok
}

// Apply sets the control flag t drives on ship. It reports false and
// leaves the ship alone for tokens that are not controls.
func (t Token) Apply(ship *object.Ship) bool {
	c, ok := controlTokens[t]
	if !ok {
		return false
	}
	c.flag(ship, c.on)
	return true
}

// Bytes returns the wire form of a bare token.
func (t Token) Bytes() []byte {
	return []byte(t)
}

// ConnectMessage builds the CONNECT@<nickname> datagram.
func ConnectMessage(nickname string) []byte {
	return []byte(string(Connect) + separator + nickname)
}

// ValidNickname reports whether a nickname can identify a ship: not blank
// and at most config.MaxUsernameLength characters.
func ValidNickname(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	return strings.TrimSpace(nickname) != "" && n <= config.MaxUsernameLength
}
