// Package session tracks active pairings: who sits where, the authoritative
// position, and the room each broadcast fans out to.
package session

import (
	"errors"
	"time"

	"github.com/seojin-dev/chess-arena/internal/rules"
)

// Session is one active game. Seats are fixed at creation; the position is
// replaced wholesale on every accepted move.
type Session struct {
	ID        string         `json:"id"`
	Position  rules.Position `json:"-"`
	FEN       string         `json:"fen"`
	Turn      rules.Color    `json:"turn"`
	Outcome   rules.Outcome  `json:"outcome,omitempty"`
	White     string         `json:"white_id"`
	Black     string         `json:"black_id"`
	MoveCount int            `json:"move_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	spectators map[string]struct{}
}

// SeatOf returns the color held by the connection, or "" when unseated.
func (s *Session) SeatOf(connID string) rules.Color {
	switch connID {
	case s.White:
		return rules.White
	case s.Black:
		return rules.Black
	default:
		return ""
	}
}

// Opponent returns the other seated connection, or "" when connID holds no
// seat.
func (s *Session) Opponent(connID string) string {
	switch connID {
	case s.White:
		return s.Black
	case s.Black:
		return s.White
	default:
		return ""
	}
}

// Members lists the room: both seats plus any spectators.
func (s *Session) Members() []string {
	out := make([]string, 0, 2+len(s.spectators))
	out = append(out, s.White, s.Black)
	for id := range s.spectators {
		out = append(out, id)
	}
	return out
}

func (s *Session) clone() Session {
	cp := *s
	cp.Position.MovesUCI = append([]string(nil), s.Position.MovesUCI...)
	cp.spectators = make(map[string]struct{}, len(s.spectators))
	for id := range s.spectators {
		cp.spectators[id] = struct{}{}
	}
	return cp
}

var ErrNotFound = errors.New("session not found")
