// Package console renders a game for text terminals: a half-block radar of
// the arena next to a scoreboard. It backs the SSH gateway and the status
// line of the local launcher.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// sessionTagLength is how much of a ksuid session is shown.
const sessionTagLength = 8

// Board formats scoreboards with the styles of one output.
type Board struct {
	title lipgloss.Style
	dim   lipgloss.Style
	alert lipgloss.Style
	r     *lipgloss.Renderer
}

// NewBoard creates a Board that styles for r. A nil r uses the default
// renderer.
func NewBoard(r *lipgloss.Renderer) *Board {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Board{
		title: r.NewStyle().Bold(true),
		dim:   r.NewStyle().Faint(true),
		alert: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		r:     r,
	}
}

// Lines returns the scoreboard for s, one string per terminal row.
func (b *Board) Lines(s *world.State) []string {
	lines := []string{b.header(s)}

	if !s.Ship.IsPlaceholder() {
		lines = append(lines, b.row(&s.Ship, "host", ""))
	}
	for i := range s.Participants {
		p := &s.Participants[i]
		if p.Ship.IsPlaceholder() {
			continue
		}
		lines = append(lines, b.row(&p.Ship, p.AddrPort().String(), p.Session))
	}
	if len(lines) == 1 {
		lines = append(lines, b.dim.Render("no ships"))
	}
	return lines
}

// Status returns a one-line summary of s.
func (b *Board) Status(s *world.State) string {
	return b.header(s)
}

func (b *Board) header(s *world.State) string {
	h := fmt.Sprintf("%s  asteroids %d/%d  destroyed %d",
		b.title.Render("ASTEROIDS"), len(s.Asteroids), s.Limit, s.Destroyed)
	switch {
	case s.Aborted:
		h += "  " + b.alert.Render("ABORTED")
	case s.GameOver():
		h += "  " + b.alert.Render("GAME OVER")
	}
	return h
}

func (b *Board) row(ship *object.Ship, where, session string) string {
	swatch := b.r.NewStyle().Foreground(hex(ship.Color)).Render("■")
	nick := fmt.Sprintf("%-*s", config.MaxUsernameLength, ship.Nickname)
	state := "alive"
	if ship.Destroyed {
		state = b.alert.Render("down ")
	}
	line := fmt.Sprintf("%s %s %5d  %s  %s", swatch, nick, ship.Score, state, b.dim.Render(where))
	if session != "" {
		line += " " + b.dim.Render(shortSession(session))
	}
	return line
}

func shortSession(s string) string {
	if len(s) > sessionTagLength {
		return s[:sessionTagLength]
	}
	return s
}

func hex(c object.Color) lipgloss.Color {
	r, g, b := c.RGB()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, b))
}

// Plain joins lines for logs and tests.
func Plain(lines []string) string {
	return strings.Join(lines, "\n")
}
