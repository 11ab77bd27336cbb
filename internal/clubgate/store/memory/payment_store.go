package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type PaymentStore struct {
	mu       sync.RWMutex
	payments []store.PaymentRecord
}

func NewPaymentStore(payments ...store.PaymentRecord) *PaymentStore {
	return &PaymentStore{payments: append([]store.PaymentRecord(nil), payments...)}
}

func (s *PaymentStore) SumByMember(_ context.Context, memberID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, p := range s.payments {
		if p.MemberID == memberID {
			total += p.AmountCents
		}
	}
	return total, nil
}

func (s *PaymentStore) HasSubscriptionPayment(_ context.Context, memberID, subscriptionID string) (bool, error) {
	if subscriptionID == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.MemberID == memberID && p.SubscriptionID == subscriptionID {
			return true, nil
		}
	}
	return false, nil
}

func (s *PaymentStore) HasNotePaymentBetween(_ context.Context, memberID, note string, from, to time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.MemberID != memberID || p.Note != note {
			continue
		}
		if !p.PaidAt.Before(from) && !p.PaidAt.After(to) {
			return true, nil
		}
	}
	return false, nil
}

func (s *PaymentStore) RecordPayment(_ context.Context, rec store.PaymentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PaidAt.IsZero() {
		rec.PaidAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, rec)
	return nil
}

// Payments returns a copy of all recorded payments. Test-only helper.
func (s *PaymentStore) Payments() []store.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.PaymentRecord, len(s.payments))
	copy(out, s.payments)
	return out
}
