package store

import (
	"context"
	"time"
)

type PaymentRecord struct {
	ID             string
	MemberID       string
	SubscriptionID string // empty when not linked
	AmountCents    int64
	Note           string
	Method         string
	PaidAt         time.Time
}

type PaymentStore interface {
	SumByMember(ctx context.Context, memberID string) (int64, error)
	HasSubscriptionPayment(ctx context.Context, memberID, subscriptionID string) (bool, error)
	// HasNotePaymentBetween reports whether a payment with exactly this note
	// was made in [from, to].
	HasNotePaymentBetween(ctx context.Context, memberID, note string, from, to time.Time) (bool, error)
	RecordPayment(ctx context.Context, rec PaymentRecord) error
}
