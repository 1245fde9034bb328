package rules

import (
	"errors"
	"testing"
)

func TestApplyLegalMove(t *testing.T) {
	e := NewLibEngine()
	pos := e.Start()
	if pos.Turn != White { t.Fatalf("start turn = %s", pos.Turn) }

	next, v, err := e.Apply(pos, Proposal{From: "e2", To: "e4"})
	if err != nil { t.Fatalf("Apply: %v", err) }
	if v.UCI != "e2e4" { t.Fatalf("uci = %q", v.UCI) }
	if v.SAN != "e4" { t.Fatalf("san = %q", v.SAN) }
	if next.Turn != Black { t.Fatalf("turn after e4 = %s", next.Turn) }
	if len(next.MovesUCI) != 1 { t.Fatalf("history len = %d", len(next.MovesUCI)) }
	if next.FEN == pos.FEN { t.Fatalf("FEN did not advance") }
	// input position untouched
	if len(pos.MovesUCI) != 0 || pos.Turn != White {
		t.Fatalf("input position mutated: %+v", pos)
	}
}

func TestApplyIllegalMove(t *testing.T) {
	e := NewLibEngine()
	pos := e.Start()
	_, _, err := e.Apply(pos, Proposal{From: "e2", To: "e5"})
	if !errors.Is(err, ErrIllegalMove) { t.Fatalf("expected ErrIllegalMove, got %v", err) }
}

func TestApplyMalformed(t *testing.T) {
	e := NewLibEngine()
	pos := e.Start()
	cases := []Proposal{
		{From: "z9", To: "e4"},
		{From: "e2", To: "44"},
		{From: "", To: ""},
		{From: "e7", To: "e8", Promotion: "k"},
	}
	for _, p := range cases {
		if _, _, err := e.Apply(pos, p); !errors.Is(err, ErrMalformed) {
			t.Fatalf("proposal %+v: expected ErrMalformed, got %v", p, err)
		}
	}
}

func TestApplyPromotion(t *testing.T) {
	e := NewLibEngine()
	pos := e.Start()
	// shortest promotion line: white runs the a-pawn through black's rook file
	line := []Proposal{
		{From: "a2", To: "a4"}, {From: "b7", To: "b5"},
		{From: "a4", To: "b5"}, {From: "b8", To: "c6"},
		{From: "b5", To: "b6"}, {From: "c6", To: "d4"},
		{From: "b6", To: "b7"}, {From: "d4", To: "e6"},
	}
	var err error
	for _, p := range line {
		pos, _, err = e.Apply(pos, p)
		if err != nil { t.Fatalf("setup move %+v: %v", p, err) }
	}
	next, v, err := e.Apply(pos, Proposal{From: "b7", To: "a8", Promotion: "q"})
	if err != nil { t.Fatalf("promotion: %v", err) }
	if v.UCI != "b7a8q" { t.Fatalf("uci = %q", v.UCI) }
	if next.Turn != Black { t.Fatalf("turn after promotion = %s", next.Turn) }
}

func TestSnapshotConsistency(t *testing.T) {
	// The broadcast snapshot and the server position must not diverge: after
	// every applied move the FEN changes and side-to-move alternates, so a
	// receiver holding the relayed history can validate the next move the
	// same way the server does.
	e := NewLibEngine()
	server := e.Start()
	relayed := e.Start()

	moves := []Proposal{
		{From: "e2", To: "e4"}, {From: "e7", To: "e5"},
		{From: "g1", To: "f3"}, {From: "b8", To: "c6"},
	}
	for _, p := range moves {
		var err error
		server, _, err = e.Apply(server, p)
		if err != nil { t.Fatalf("server apply %+v: %v", p, err) }
		relayed, _, err = e.Apply(relayed, p)
		if err != nil { t.Fatalf("relayed apply %+v: %v", p, err) }
		if server.FEN != relayed.FEN {
			t.Fatalf("divergence after %+v: %q vs %q", p, server.FEN, relayed.FEN)
		}
		if server.Turn != relayed.Turn { t.Fatalf("turn divergence after %+v", p) }
	}
}

func TestColorOpponent(t *testing.T) {
	if White.Opponent() != Black || Black.Opponent() != White {
		t.Fatal("Opponent mapping broken")
	}
}
