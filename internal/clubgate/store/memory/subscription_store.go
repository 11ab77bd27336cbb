package memory

import (
	"context"
	"sync"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type SubscriptionStore struct {
	mu   sync.RWMutex
	subs []store.SubscriptionRecord
}

func NewSubscriptionStore(subs ...store.SubscriptionRecord) *SubscriptionStore {
	return &SubscriptionStore{subs: append([]store.SubscriptionRecord(nil), subs...)}
}

func (s *SubscriptionStore) Add(rec store.SubscriptionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, rec)
}

func (s *SubscriptionStore) LatestActive(_ context.Context, memberID string) (store.SubscriptionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  store.SubscriptionRecord
		found bool
	)
	for _, sub := range s.subs {
		if sub.MemberID != memberID || sub.Status != store.SubscriptionActive {
			continue
		}
		// Latest created wins; equal timestamps fall back to the highest id.
		if !found || sub.CreatedAt.After(best.CreatedAt) ||
			(sub.CreatedAt.Equal(best.CreatedAt) && sub.ID > best.ID) {
			best = sub
			found = true
		}
	}
	return best, found, nil
}
