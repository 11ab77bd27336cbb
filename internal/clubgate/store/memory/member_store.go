package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type MemberStore struct {
	mu      sync.RWMutex
	members map[string]store.MemberRecord
	// MarkSeenErr, when set, is returned by MarkSeen. Test hook.
	MarkSeenErr error
}

func NewMemberStore(members ...store.MemberRecord) *MemberStore {
	s := &MemberStore{members: make(map[string]store.MemberRecord, len(members))}
	for _, m := range members {
		s.members[m.ID] = m
	}
	return s
}

// Put inserts or replaces a member.
func (s *MemberStore) Put(m store.MemberRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

// FindByIdentifier matches card ids before member codes, like the SQLite
// store, so a card that equals another member's code resolves to the card
// holder.
func (s *MemberStore) FindByIdentifier(_ context.Context, identifier string) (store.MemberRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.CardUID != "" && strings.EqualFold(m.CardUID, identifier) {
			return m, true, nil
		}
	}
	for _, m := range s.members {
		if m.MemberCode != "" && strings.EqualFold(m.MemberCode, identifier) {
			return m, true, nil
		}
	}
	return store.MemberRecord{}, false, nil
}

func (s *MemberStore) FindByID(_ context.Context, memberID string) (store.MemberRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	return m, ok, nil
}

func (s *MemberStore) MarkSeen(_ context.Context, memberID string, t time.Time) error {
	if s.MarkSeenErr != nil {
		return s.MarkSeenErr
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil
	}
	seen := t.UTC()
	m.LastScanAt = &seen
	s.members[memberID] = m
	return nil
}
