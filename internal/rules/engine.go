package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// startFEN is the standard initial position.
const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// LibEngine implements Engine on top of corentings/chess. The position is
// reconstructed from the start by replaying the stored UCI history; the FEN
// on Position is presentation state, never re-applied.
type LibEngine struct{}

func NewLibEngine() *LibEngine { return &LibEngine{} }

func (e *LibEngine) Start() Position {
	return Position{MovesUCI: []string{}, FEN: startFEN, Turn: White}
}

func (e *LibEngine) Apply(pos Position, p Proposal) (Position, Verdict, error) {
	uci, err := encodeUCI(p)
	if err != nil { return pos, Verdict{}, err }

	game := replay(pos.MovesUCI)
	if game == nil {
		return pos, Verdict{}, fmt.Errorf("%w: corrupt move history", ErrMalformed)
	}
	cur := game.Position()

	notation := nchess.UCINotation{}
	mv, derr := notation.Decode(cur, uci)
	if derr != nil {
		return pos, Verdict{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	if merr := game.Move(mv, nil); merr != nil {
		return pos, Verdict{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	san := nchess.AlgebraicNotation{}.Encode(cur, mv)

	next := Position{
		MovesUCI: append(append([]string(nil), pos.MovesUCI...), uci),
		FEN:      game.FEN(),
		Turn:     colorFrom(game.Position().Turn()),
	}
	v := Verdict{UCI: uci, SAN: san, Outcome: outcomeFrom(game.Outcome())}
	return next, v, nil
}

// encodeUCI builds the UCI string for a proposal, rejecting anything that is
// not two squares plus an optional promotion letter.
func encodeUCI(p Proposal) (string, error) {
	from := strings.ToLower(strings.TrimSpace(p.From))
	to := strings.ToLower(strings.TrimSpace(p.To))
	promo := strings.ToLower(strings.TrimSpace(p.Promotion))
	if !validSquare(from) || !validSquare(to) {
		return "", fmt.Errorf("%w: %q-%q", ErrMalformed, p.From, p.To)
	}
	switch promo {
	case "", "q", "r", "b", "n":
	default:
		return "", fmt.Errorf("%w: promotion %q", ErrMalformed, p.Promotion)
	}
	return from + to + promo, nil
}

func validSquare(s string) bool {
	if len(s) != 2 { return false }
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func replay(moves []string) *nchess.Game {
	game := nchess.NewGame()
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil { return nil }
	}
	return game
}

func colorFrom(c nchess.Color) Color {
	if c == nchess.White { return White }
	return Black
}

func outcomeFrom(o nchess.Outcome) Outcome {
	switch o {
	case nchess.WhiteWon:
		return OutcomeWhiteWon
	case nchess.BlackWon:
		return OutcomeBlackWon
	case nchess.Draw:
		return OutcomeDraw
	default:
		return OutcomeNone
	}
}
