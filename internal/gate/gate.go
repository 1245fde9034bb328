package gate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/seojin-dev/chess-arena/internal/arena"
	"github.com/seojin-dev/chess-arena/internal/obslog"
	"github.com/seojin-dev/chess-arena/internal/rules"
	"github.com/seojin-dev/chess-arena/pkg/wire"
)

const (
	defaultSendBuf = 64
	pingInterval   = 15 * time.Second
	readLimit      = 4 << 10
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Gate owns the websocket edge. It accepts connections, feeds decoded
// envelopes into the manager, and fans manager output back out through
// per-connection send buffers. It is the manager's Outbox.
type Gate struct {
	manager *arena.Manager

	mu      sync.RWMutex
	clients map[string]*client

	sendBuf int
}

func New(manager *arena.Manager, sendBuf int) *Gate {
	if sendBuf <= 0 {
		sendBuf = defaultSendBuf
	}
	g := &Gate{
		manager: manager,
		clients: make(map[string]*client),
		sendBuf: sendBuf,
	}
	manager.SetOutbox(g)
	return g
}

// Send implements arena.Outbox. Slow consumers lose events rather than
// stalling the manager.
func (g *Gate) Send(connID string, ev wire.Envelope) {
	b, err := json.Marshal(ev)
	if err != nil {
		obslog.L().Error("gate_marshal_error", zap.String("event", ev.Event), zap.Error(err))
		return
	}
	// teardown closes c.send under the write lock; the read lock must be
	// held across the send
	g.mu.RLock()
	defer g.mu.RUnlock()
	c := g.clients[connID]
	if c == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		obslog.L().Warn("gate_send_drop", zap.String("conn_id", connID), zap.String("event", ev.Event))
	}
}

// ServeWS upgrades the request and runs the connection until the peer
// goes away. Every connection enters the matchmaking queue immediately.
func (g *Gate) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		obslog.L().Warn("gate_accept_error", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, g.sendBuf)}

	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
	obslog.L().Info("conn_open", zap.String("conn_id", c.id))

	ctx := r.Context()
	go g.writeLoop(ctx, c)

	g.manager.Admit(ctx, c.id)
	g.readLoop(ctx, c)

	g.mu.Lock()
	delete(g.clients, c.id)
	close(c.send)
	g.mu.Unlock()

	g.manager.Disconnect(context.WithoutCancel(ctx), c.id)
}

func (g *Gate) readLoop(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var ev wire.Envelope
		if err := json.Unmarshal(data, &ev); err != nil {
			obslog.L().Debug("gate_bad_frame", zap.String("conn_id", c.id))
			continue
		}
		g.dispatch(ctx, c, ev)
	}
}

func (g *Gate) dispatch(ctx context.Context, c *client, ev wire.Envelope) {
	switch ev.Event {
	case wire.EventMove:
		var req wire.MoveRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			obslog.L().Debug("gate_bad_payload", zap.String("conn_id", c.id), zap.String("event", ev.Event))
			return
		}
		g.manager.SubmitMove(ctx, c.id, req.SessionID, rulesProposal(req))
	case wire.EventSpectate:
		var req wire.SpectateRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			obslog.L().Debug("gate_bad_payload", zap.String("conn_id", c.id), zap.String("event", ev.Event))
			return
		}
		g.manager.Spectate(ctx, c.id, req.SessionID)
	default:
		obslog.L().Debug("gate_unknown_event", zap.String("conn_id", c.id), zap.String("event", ev.Event))
	}
}

func (g *Gate) writeLoop(ctx context.Context, c *client) {
	ping := time.NewTicker(pingInterval)
	defer func() { ping.Stop(); _ = c.conn.Close(websocket.StatusNormalClosure, "bye") }()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func rulesProposal(req wire.MoveRequest) rules.Proposal {
	return rules.Proposal{From: req.From, To: req.To, Promotion: req.Promotion}
}

// ClientCount reports connections currently held open at the edge.
func (g *Gate) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}
