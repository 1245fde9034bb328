// Package arena coordinates the matchmaking queue, the session registry and
// the rules engine: admissions, disconnects and move processing all pass
// through one Manager so that every state transition is serialized.
package arena

import (
	"context"
	"errors"
	"sync"

	"github.com/seojin-dev/chess-arena/internal/match"
	"github.com/seojin-dev/chess-arena/internal/msgcat"
	"github.com/seojin-dev/chess-arena/internal/obslog"
	"github.com/seojin-dev/chess-arena/internal/rules"
	"github.com/seojin-dev/chess-arena/internal/session"
	"github.com/seojin-dev/chess-arena/pkg/wire"
	"go.uber.org/zap"
)

// Role is a connection's current place in the lifecycle.
type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleQueued     Role = "queued"
	RolePlaying    Role = "playing"
	RoleSpectating Role = "spectating"
)

// Outbox delivers an envelope to a connection's outbound queue. Sends are
// fire-and-forget: the transport buffers per connection and must not block
// the caller.
type Outbox interface {
	Send(connID string, ev wire.Envelope)
}

// Manager is the single serialization point for all shared mutable state.
// Concurrent network events are funneled through its lock in arrival order;
// no network I/O happens while it is held.
type Manager struct {
	mu       sync.Mutex
	queue    *match.Queue
	registry *session.Registry
	engine   rules.Engine
	cat      *msgcat.Catalog
	outbox   Outbox
	conns    map[string]Role
}

func NewManager(queue *match.Queue, registry *session.Registry, engine rules.Engine, cat *msgcat.Catalog) *Manager {
	return &Manager{
		queue:    queue,
		registry: registry,
		engine:   engine,
		cat:      cat,
		conns:    make(map[string]Role),
	}
}

// SetOutbox wires the transport; the gate is constructed after the manager.
func (m *Manager) SetOutbox(o Outbox) {
	m.mu.Lock()
	m.outbox = o
	m.mu.Unlock()
}

// Admit registers a new connection, queues it, and attempts pairing.
func (m *Manager) Admit(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[connID] = RoleQueued
	m.queue.Enqueue(connID)
	m.send(connID, wire.EventWaiting, wire.Waiting{
		Message: m.cat.Render(msgcat.KeyWaiting, nil),
	})
	obslog.L().Info("conn_admit", zap.String("conn_id", connID), zap.Int("waiting", m.queue.Len()))
	m.pairWaiting(ctx)
}

// Disconnect tears down everything the connection owned: its queue slot, its
// spectator binding, and, when seated, its session. The surviving opponent
// goes back to the queue.
func (m *Manager) Disconnect(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, connID)
	m.queue.Remove(connID)
	m.registry.DropObserver(connID)

	s, seated := m.registry.FindBySeated(connID)
	if !seated {
		obslog.L().Info("conn_close", zap.String("conn_id", connID))
		return
	}

	opp := s.Opponent(connID)
	if _, live := m.conns[opp]; live {
		m.send(opp, wire.EventOpponentDisconnected, wire.OpponentDisconnected{
			Message: m.cat.Render(msgcat.KeyOpponentDisconnected, nil),
		})
		m.conns[opp] = RoleQueued
		m.queue.Enqueue(opp)
	}

	destroyed, err := m.registry.Destroy(ctx, s.ID)
	if err != nil {
		// already gone; nothing else to unwind
		obslog.L().Info("conn_close", zap.String("conn_id", connID))
		return
	}
	for _, member := range destroyed.Members() {
		if member == destroyed.White || member == destroyed.Black {
			continue
		}
		if _, live := m.conns[member]; live {
			m.conns[member] = RoleUnassigned
		}
	}
	obslog.L().Info("session_destroy",
		zap.String("session_id", s.ID),
		zap.String("conn_id", connID),
		zap.String("opponent_id", opp),
	)
	m.pairWaiting(ctx)
}

// SubmitMove runs the turn-enforcing state machine for one proposal.
// Unknown sessions and unauthorized senders are discarded without a reply;
// rules violations bounce back to the submitter only.
func (m *Manager) SubmitMove(ctx context.Context, connID, sessionID string, p rules.Proposal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.registry.Get(sessionID)
	if err != nil {
		// stale reference: the session raced a disconnect
		obslog.L().Debug("move_stale", zap.String("conn_id", connID), zap.String("session_id", sessionID))
		return
	}
	seat := s.SeatOf(connID)
	if seat == "" || seat != s.Turn {
		obslog.L().Debug("move_unauthorized",
			zap.String("conn_id", connID),
			zap.String("session_id", sessionID),
			zap.String("seat", string(seat)),
			zap.String("turn", string(s.Turn)),
		)
		return
	}

	next, verdict, err := m.engine.Apply(s.Position, p)
	if err != nil {
		if errors.Is(err, rules.ErrIllegalMove) || errors.Is(err, rules.ErrMalformed) {
			m.send(connID, wire.EventMoveRejected, wire.MoveRejected{
				SessionID: sessionID,
				From:      p.From,
				To:        p.To,
				Promotion: p.Promotion,
				Message:   m.cat.Render(msgcat.KeyMoveRejected, nil),
			})
			obslog.L().Info("move_rejected",
				zap.String("session_id", sessionID),
				zap.String("conn_id", connID),
				zap.String("from", p.From),
				zap.String("to", p.To),
			)
			return
		}
		obslog.L().Error("move_engine_error", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	updated, err := m.registry.ApplyPosition(ctx, sessionID, next, verdict.Outcome)
	if err != nil {
		obslog.L().Debug("move_stale", zap.String("conn_id", connID), zap.String("session_id", sessionID))
		return
	}

	accepted := wire.MoveAccepted{
		SessionID: sessionID,
		From:      p.From,
		To:        p.To,
		Promotion: p.Promotion,
		SAN:       verdict.SAN,
		UCI:       verdict.UCI,
	}
	snapshot := wire.PositionSnapshot{
		SessionID: sessionID,
		FEN:       updated.FEN,
		Turn:      string(updated.Turn),
		Outcome:   string(updated.Outcome),
	}
	for _, member := range updated.Members() {
		m.send(member, wire.EventMoveAccepted, accepted)
		m.send(member, wire.EventPositionSnapshot, snapshot)
	}
	obslog.L().Info("move_applied",
		zap.String("session_id", sessionID),
		zap.String("conn_id", connID),
		zap.String("uci", verdict.UCI),
		zap.String("turn", string(updated.Turn)),
		zap.String("outcome", string(verdict.Outcome)),
	)
}

// Spectate binds a non-playing connection to a session room as an observer
// and hands it the current snapshot. Unknown sessions are discarded
// silently, as are requests from seated players.
func (m *Manager) Spectate(ctx context.Context, connID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conns[connID] == RolePlaying {
		obslog.L().Debug("spectate_refused", zap.String("conn_id", connID))
		return
	}
	s, err := m.registry.AddSpectator(sessionID, connID)
	if err != nil {
		obslog.L().Debug("spectate_stale", zap.String("conn_id", connID), zap.String("session_id", sessionID))
		return
	}
	m.queue.Remove(connID)
	m.conns[connID] = RoleSpectating
	m.send(connID, wire.EventPositionSnapshot, wire.PositionSnapshot{
		SessionID: s.ID,
		FEN:       s.FEN,
		Turn:      string(s.Turn),
		Outcome:   string(s.Outcome),
	})
	obslog.L().Info("spectate_join", zap.String("conn_id", connID), zap.String("session_id", sessionID))
}

// pairWaiting drains the queue two at a time. Called under the lock after
// every enqueue and after every teardown, so the queue never rests with two
// or more entries.
func (m *Manager) pairWaiting(ctx context.Context) {
	for {
		a, b, ok := m.queue.DequeuePair()
		if !ok {
			return
		}
		s, err := m.registry.Create(ctx, a, b, m.engine.Start())
		if err != nil {
			obslog.L().Error("session_create_error", zap.Error(err))
			m.queue.Enqueue(a)
			m.queue.Enqueue(b)
			return
		}
		m.conns[s.White] = RolePlaying
		m.conns[s.Black] = RolePlaying
		m.send(s.White, wire.EventSeatAssigned, wire.SeatAssigned{
			Color:     string(rules.White),
			SessionID: s.ID,
			Message:   m.cat.Render(msgcat.KeySeatAssigned, map[string]string{"Color": string(rules.White)}),
		})
		m.send(s.Black, wire.EventSeatAssigned, wire.SeatAssigned{
			Color:     string(rules.Black),
			SessionID: s.ID,
			Message:   m.cat.Render(msgcat.KeySeatAssigned, map[string]string{"Color": string(rules.Black)}),
		})
		obslog.L().Info("match_paired",
			zap.String("session_id", s.ID),
			zap.String("white_id", s.White),
			zap.String("black_id", s.Black),
		)
	}
}

func (m *Manager) send(connID, event string, payload any) {
	if m.outbox == nil {
		return
	}
	ev, err := wire.Wrap(event, payload)
	if err != nil {
		obslog.L().Error("event_encode_error", zap.String("event", event), zap.Error(err))
		return
	}
	m.outbox.Send(connID, ev)
}

// Stats is a point-in-time counter sample for the ops endpoint.
type Stats struct {
	Connections int `json:"connections"`
	Waiting     int `json:"waiting"`
	Sessions    int `json:"sessions"`
}

func (m *Manager) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Connections: len(m.conns),
		Waiting:     m.queue.Len(),
		Sessions:    m.registry.Count(),
	}
}
