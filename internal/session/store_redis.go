package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlSession = 24 * time.Hour

// RedisStore keeps one JSON snapshot per session plus a per-connection index
// set, all TTL'd so abandoned keys age out on their own.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func keySession(id string) string  { return "arena:session:" + strings.TrimSpace(id) }
func keyConnIdx(conn string) string { return "arena:index:conn:" + strings.TrimSpace(conn) }

type snapshotRecord struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	Turn      string    `json:"turn"`
	Outcome   string    `json:"outcome,omitempty"`
	MovesUCI  []string  `json:"moves_uci"`
	WhiteID   string    `json:"white_id"`
	BlackID   string    `json:"black_id"`
	MoveCount int       `json:"move_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, sess *Session) error {
	rec := snapshotRecord{
		ID:        sess.ID,
		FEN:       sess.FEN,
		Turn:      string(sess.Turn),
		Outcome:   string(sess.Outcome),
		MovesUCI:  sess.Position.MovesUCI,
		WhiteID:   sess.White,
		BlackID:   sess.Black,
		MoveCount: sess.MoveCount,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	raw, err := json.Marshal(&rec)
	if err != nil { return err }
	if err := s.rdb.Set(ctx, keySession(sess.ID), raw, ttlSession).Err(); err != nil { return err }
	for _, conn := range []string{sess.White, sess.Black} {
		if strings.TrimSpace(conn) == "" { continue }
		if err := s.rdb.SAdd(ctx, keyConnIdx(conn), sess.ID).Err(); err != nil { return err }
		_ = s.rdb.Expire(ctx, keyConnIdx(conn), ttlSession).Err()
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	raw, err := s.rdb.Get(ctx, keySession(id)).Bytes()
	if err == nil {
		var rec snapshotRecord
		if jerr := json.Unmarshal(raw, &rec); jerr == nil {
			for _, conn := range []string{rec.WhiteID, rec.BlackID} {
				if strings.TrimSpace(conn) == "" { continue }
				_ = s.rdb.SRem(ctx, keyConnIdx(conn), id).Err()
			}
		}
	} else if err != redis.Nil {
		return err
	}
	return s.rdb.Del(ctx, keySession(id)).Err()
}

// Load returns the mirrored record, or nil when absent. Ops tooling reads
// through this; the server itself never does.
func (s *RedisStore) Load(ctx context.Context, id string) (map[string]any, error) {
	raw, err := s.rdb.Get(ctx, keySession(id)).Bytes()
	if err == redis.Nil { return nil, nil }
	if err != nil { return nil, err }
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil { return nil, err }
	return m, nil
}
