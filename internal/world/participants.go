package world

import (
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
)

// ClipNickname trims surrounding space and cuts the nickname to the
// maximum display length.
func ClipNickname(nickname string) string {
	nickname = strings.TrimSpace(nickname)
	if utf8.RuneCountInString(nickname) <= config.MaxUsernameLength {
		return nickname
	}
	return string([]rune(nickname)[:config.MaxUsernameLength])
}

// IndexOf returns the index of the participant sending from addr, or
// NoParticipant.
func (s *State) IndexOf(addr netip.Addr) int {
	for i := range s.Participants {
		if s.Participants[i].SameHost(addr) {
			return i
		}
	}
	return NoParticipant
}

// Connect registers a participant for addr with a fresh ship. A host that
// is already registered is left untouched. It returns the participant's
// index and whether it was added.
func (s *State) Connect(addr netip.AddrPort, nickname, session string) (int, bool) {
	if i := s.IndexOf(addr.Addr()); i != NoParticipant {
		return i, false
	}
	p := object.NewParticipant(addr, ClipNickname(nickname))
	p.Session = session
	p.Ship.Color = object.PaletteColor(len(s.Participants) + 1)
	s.Participants = append(s.Participants, p)
	return len(s.Participants) - 1, true
}

// Without returns a copy of the state with the participant sending from
// addr removed. The receiver is not modified.
func (s *State) Without(addr netip.Addr) *State {
	c := s.Clone()
	if i := c.IndexOf(addr); i != NoParticipant {
		c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
	}
	return c
}

// ParticipantShip returns the ship of participant i, or nil when i is out
// of range.
func (s *State) ParticipantShip(i int) *object.Ship {
	if i < 0 || i >= len(s.Participants) {
		return nil
	}
	return &s.Participants[i].Ship
}
