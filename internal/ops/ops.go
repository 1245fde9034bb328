package ops

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/seojin-dev/chess-arena/internal/arena"
	"github.com/seojin-dev/chess-arena/internal/obslog"
)

// Server answers operational probes on a side port, away from game
// traffic. It reports liveness and a counter snapshot of the arena.
type Server struct {
	manager *arena.Manager
	srv     *fasthttp.Server
}

func NewServer(manager *arena.Manager) *Server {
	s := &Server{manager: manager}
	s.srv = &fasthttp.Server{
		Handler:      s.route,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Name:         "arena-ops",
	}
	return s
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case "/status":
		s.handleStatus(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	st := s.manager.Snapshot()
	b, err := json.Marshal(map[string]any{
		"connections": st.Connections,
		"waiting":     st.Waiting,
		"sessions":    st.Sessions,
	})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("ops_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}
