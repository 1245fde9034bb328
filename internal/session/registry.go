package session

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seojin-dev/chess-arena/internal/obslog"
	"github.com/seojin-dev/chess-arena/internal/rules"
	"go.uber.org/zap"
)

// Registry is the authoritative map of active sessions. All mutation happens
// under its lock; callers only ever see value copies. An optional Store
// mirrors session snapshots for out-of-process inspection; mirror failures
// are logged and never fail the operation.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	bySeat   map[string]string // seated connID -> sessionID
	bySpect  map[string]string // spectating connID -> sessionID
	store    Store
}

func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NopStore{}
	}
	return &Registry{
		sessions: make(map[string]*Session),
		bySeat:   make(map[string]string),
		bySpect:  make(map[string]string),
		store:    store,
	}
}

// Create pairs two connections into a fresh session. Seats are assigned by
// an unbiased crypto/rand coin flip; the session ID is an opaque generated
// token, independent of the connection identifiers.
func (r *Registry) Create(ctx context.Context, connA, connB string, start rules.Position) (Session, error) {
	white, black := connA, connB
	if n, _ := rand.Int(rand.Reader, big.NewInt(2)); n != nil && n.Int64() == 0 {
		white, black = connB, connA
	}
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Position:   start,
		FEN:        start.FEN,
		Turn:       start.Turn,
		White:      white,
		Black:      black,
		CreatedAt:  now,
		UpdatedAt:  now,
		spectators: make(map[string]struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.bySeat[white] = s.ID
	r.bySeat[black] = s.ID
	r.mirror(ctx, s)
	return s.clone(), nil
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s.clone(), nil
}

// FindBySeated locates the session in which the connection holds a seat.
func (r *Registry) FindBySeated(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bySeat[connID]
	if !ok {
		return Session{}, false
	}
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// ApplyPosition replaces the session position after an accepted move and
// returns the updated copy. The outcome sticks to the session so late
// joiners see a finished game as finished.
func (r *Registry) ApplyPosition(ctx context.Context, id string, next rules.Position, outcome rules.Outcome) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	s.Position = next
	s.FEN = next.FEN
	s.Turn = next.Turn
	s.Outcome = outcome
	s.MoveCount = len(next.MovesUCI)
	s.UpdatedAt = time.Now()
	r.mirror(ctx, s)
	return s.clone(), nil
}

// AddSpectator binds an observer into the session room. A connection
// observes at most one session; re-binding moves it.
func (r *Registry) AddSpectator(id, connID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if prev, ok := r.bySpect[connID]; ok && prev != id {
		if old, ok := r.sessions[prev]; ok {
			delete(old.spectators, connID)
		}
	}
	s.spectators[connID] = struct{}{}
	r.bySpect[connID] = id
	return s.clone(), nil
}

// DropObserver removes a connection's spectator binding, if any.
func (r *Registry) DropObserver(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bySpect[connID]
	if !ok {
		return
	}
	delete(r.bySpect, connID)
	if s, ok := r.sessions[id]; ok {
		delete(s.spectators, connID)
	}
}

// Destroy removes the session and unbinds its room, returning a final copy
// so the caller can sequence notifications. Destroying an unknown session
// returns ErrNotFound.
func (r *Registry) Destroy(ctx context.Context, id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	delete(r.sessions, id)
	delete(r.bySeat, s.White)
	delete(r.bySeat, s.Black)
	for connID := range s.spectators {
		delete(r.bySpect, connID)
	}
	if err := r.store.Delete(ctx, s.ID); err != nil {
		obslog.L().Warn("session_mirror_delete_error", zap.String("session_id", s.ID), zap.Error(err))
	}
	return s.clone(), nil
}

// Count reports the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) mirror(ctx context.Context, s *Session) {
	if err := r.store.SaveSnapshot(ctx, s); err != nil {
		obslog.L().Warn("session_mirror_save_error", zap.String("session_id", s.ID), zap.Error(err))
	}
}
