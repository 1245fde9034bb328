package session

import "context"

// Store mirrors live session snapshots outside the process. The in-memory
// registry stays authoritative; the mirror only serves inspection, so
// implementations should be cheap and tolerate being behind.
type Store interface {
	SaveSnapshot(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// NopStore discards everything; used when no redis is configured.
type NopStore struct{}

func (NopStore) SaveSnapshot(context.Context, *Session) error { return nil }
func (NopStore) Delete(context.Context, string) error         { return nil }
