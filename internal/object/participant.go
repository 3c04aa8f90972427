package object

import "net/netip"

// Participant is one networked player inside the hub's shared simulation:
// a ship, its bullets, and the address the player sends from.
//
// Identity is the sender's IP address. Two datagrams from the same host
// always refer to the same participant; Port only records where to reply.
type Participant struct {
	Addr    netip.Addr
	Port    uint16
	Session string // Log/scoreboard tag, not identity
	Ship    Ship
	Bullets []Bullet
}

// NewParticipant creates a participant with a fresh ship and no bullets.
func NewParticipant(addr netip.AddrPort, nickname string) Participant {
	return Participant{
		Addr: addr.Addr().Unmap(),
		Port: addr.Port(),
		Ship: NewShip(nickname),
	}
}

// AddrPort returns the reply address of the participant.
func (p *Participant) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(p.Addr, p.Port)
}

// SameHost reports whether addr identifies this participant.
func (p *Participant) SameHost(addr netip.Addr) bool {
	return p.Addr == addr.Unmap()
}

// Clone returns a deep copy of the participant.
func (p Participant) Clone() Participant {
	p.Bullets = CloneBullets(p.Bullets)
	return p
}

// CloneBullets returns an independent copy of bullets.
func CloneBullets(bullets []Bullet) []Bullet {
	if bullets == nil {
		return nil
	}
	return append(make([]Bullet, 0, len(bullets)), bullets...)
}

// CloneAsteroids returns an independent copy of asteroids.
func CloneAsteroids(asteroids []Asteroid) []Asteroid {
	if asteroids == nil {
		return nil
	}
	return append(make([]Asteroid, 0, len(asteroids)), asteroids...)
}

// CloneParticipants returns a deep copy of participants.
func CloneParticipants(ps []Participant) []Participant {
	if ps == nil {
		return nil
	}
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
