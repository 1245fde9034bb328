package rules

import "errors"

// Color identifies a chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Outcome is what the engine reports about a position after a move. It is
// relayed to clients verbatim and never gates further processing here.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeWhiteWon Outcome = "white_won"
	OutcomeBlackWon Outcome = "black_won"
	OutcomeDraw     Outcome = "draw"
)

// Proposal is one candidate move: source and target squares in algebraic
// form ("e2", "e4") plus an optional promotion piece (q, r, b, n).
type Proposal struct {
	From      string
	To        string
	Promotion string
}

// Position is the authoritative game state. MovesUCI is the replayable
// history, FEN the self-describing snapshot derived from it, Turn the side
// to move. Everything outside this package treats it as opaque.
type Position struct {
	MovesUCI []string
	FEN      string
	Turn     Color
}

// Verdict describes an accepted move.
type Verdict struct {
	UCI     string
	SAN     string
	Outcome Outcome
}

var (
	// ErrIllegalMove: well-formed input the position does not allow.
	ErrIllegalMove = errors.New("illegal move")
	// ErrMalformed: input that does not even parse as a move.
	ErrMalformed = errors.New("malformed move")
)

// Engine validates a proposal against a position and produces the successor
// position. Implementations must be synchronous and side-effect-free.
type Engine interface {
	Start() Position
	Apply(pos Position, p Proposal) (Position, Verdict, error)
}
