package ops

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/seojin-dev/chess-arena/internal/arena"
	"github.com/seojin-dev/chess-arena/internal/match"
	"github.com/seojin-dev/chess-arena/internal/msgcat"
	"github.com/seojin-dev/chess-arena/internal/rules"
	"github.com/seojin-dev/chess-arena/internal/session"
)

func newTestOps(t *testing.T) (*Server, *arena.Manager) {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil { t.Fatalf("msgcat: %v", err) }
	m := arena.NewManager(match.NewQueue(), session.NewRegistry(nil), rules.NewLibEngine(), cat)
	return NewServer(m), m
}

func request(s *Server, path string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(path)
	s.route(&ctx)
	return &ctx
}

func TestHealthz(t *testing.T) {
	s, _ := newTestOps(t)
	ctx := request(s, "/healthz")
	if ctx.Response.StatusCode() != fasthttp.StatusOK { t.Fatalf("status = %d", ctx.Response.StatusCode()) }
	if string(ctx.Response.Body()) != "ok" { t.Fatalf("body = %q", ctx.Response.Body()) }
}

func TestStatusCounters(t *testing.T) {
	s, m := newTestOps(t)
	ctxBg := context.Background()
	m.Admit(ctxBg, "A")
	m.Admit(ctxBg, "B")
	m.Admit(ctxBg, "C")

	ctx := request(s, "/status")
	if ctx.Response.StatusCode() != fasthttp.StatusOK { t.Fatalf("status = %d", ctx.Response.StatusCode()) }
	var got map[string]int
	if err := json.Unmarshal(ctx.Response.Body(), &got); err != nil { t.Fatalf("body: %v", err) }
	if got["connections"] != 3 || got["sessions"] != 1 || got["waiting"] != 1 {
		t.Fatalf("counters = %v", got)
	}
}

func TestUnknownPath(t *testing.T) {
	s, _ := newTestOps(t)
	ctx := request(s, "/nope")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound { t.Fatalf("status = %d", ctx.Response.StatusCode()) }
}
