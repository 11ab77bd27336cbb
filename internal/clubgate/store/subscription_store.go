package store

import (
	"context"
	"time"
)

const (
	SubscriptionActive   = "active"
	SubscriptionExpired  = "expired"
	SubscriptionUpcoming = "upcoming"
)

type SubscriptionRecord struct {
	ID         string
	MemberID   string
	PlanName   string
	PriceCents int64
	StartsAt   time.Time
	EndsAt     *time.Time // nil = open-ended
	Status     string
	CreatedAt  time.Time
}

type SubscriptionStore interface {
	// LatestActive returns the most recently created subscription with
	// status active for the member.
	LatestActive(ctx context.Context, memberID string) (SubscriptionRecord, bool, error)
}
