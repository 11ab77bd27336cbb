package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

// AuditStore is an in-memory append-only audit log.
// It is intended for use in tests and dev environments.
type AuditStore struct {
	mu     sync.Mutex
	events []store.AuditEventRecord
	// Err, when set, is returned by RecordEvent and nothing is stored.
	Err error
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) RecordEvent(_ context.Context, rec store.AuditEventRecord) error {
	if s.Err != nil {
		return s.Err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, rec)
	return nil
}

func (s *AuditStore) ListRecent(_ context.Context, limit int) ([]store.AuditEventRecord, error) {
	limit = store.ClampLimit(limit)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AuditEventRecord, 0, min(limit, len(s.events)))
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Events returns a copy of all recorded events. Test-only helper.
func (s *AuditStore) Events() []store.AuditEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AuditEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
