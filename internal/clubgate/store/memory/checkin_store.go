package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

// CheckinStore is an in-memory append-only log of check-ins.
type CheckinStore struct {
	mu       sync.Mutex
	checkins []store.CheckinRecord
	// RecordErr, when set, is returned by RecordCheckin. Test hook.
	RecordErr error
}

func NewCheckinStore() *CheckinStore {
	return &CheckinStore{}
}

func (s *CheckinStore) RecordCheckin(_ context.Context, rec store.CheckinRecord) error {
	if s.RecordErr != nil {
		return s.RecordErr
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkins = append(s.checkins, rec)
	return nil
}

func (s *CheckinStore) LastCheckin(_ context.Context, memberID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		last  time.Time
		found bool
	)
	for _, c := range s.checkins {
		if c.MemberID == memberID && (!found || c.ScannedAt.After(last)) {
			last = c.ScannedAt
			found = true
		}
	}
	return last, found, nil
}

func (s *CheckinStore) ListRecent(_ context.Context, limit int) ([]store.CheckinRecord, error) {
	limit = store.ClampLimit(limit)
	s.mu.Lock()
	out := make([]store.CheckinRecord, len(s.checkins))
	copy(out, s.checkins)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Checkins returns a copy of all recorded check-ins. Test-only helper.
func (s *CheckinStore) Checkins() []store.CheckinRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.CheckinRecord, len(s.checkins))
	copy(out, s.checkins)
	return out
}
