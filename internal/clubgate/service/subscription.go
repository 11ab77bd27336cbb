package service

import (
	"context"
	"strings"
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type SubscriptionKind int

const (
	SubscriptionNone SubscriptionKind = iota
	// SubscriptionExplicit is a row from the subscriptions ledger.
	SubscriptionExplicit
	// SubscriptionDerived is synthesised from the member's aggregate fields
	// when no ledger row is active. It never carries a price and is never
	// matched against payments.
	SubscriptionDerived
)

func (k SubscriptionKind) String() string {
	switch k {
	case SubscriptionExplicit:
		return "explicit"
	case SubscriptionDerived:
		return "derived"
	default:
		return "none"
	}
}

type ResolvedSubscription struct {
	Kind       SubscriptionKind
	ID         string // explicit only
	PlanName   string
	PriceCents int64 // explicit only
	StartsAt   *time.Time
	EndsAt     *time.Time // nil = open-ended
}

func (s ResolvedSubscription) Exists() bool { return s.Kind != SubscriptionNone }

// ExpiredAt reports whether the subscription has an end strictly before now.
func (s ResolvedSubscription) ExpiredAt(now time.Time) bool {
	return s.EndsAt != nil && s.EndsAt.Before(now)
}

// ResolveSubscription picks the member's current subscription: the latest
// active ledger row, else one derived from the aggregate when it marks the
// member active with a plan type, else none.
func ResolveSubscription(ctx context.Context, subs store.SubscriptionStore, m store.MemberRecord) (ResolvedSubscription, error) {
	rec, ok, err := subs.LatestActive(ctx, m.ID)
	if err != nil {
		return ResolvedSubscription{}, err
	}
	if ok {
		starts := rec.StartsAt
		return ResolvedSubscription{
			Kind:       SubscriptionExplicit,
			ID:         rec.ID,
			PlanName:   rec.PlanName,
			PriceCents: rec.PriceCents,
			StartsAt:   &starts,
			EndsAt:     rec.EndsAt,
		}, nil
	}
	return deriveSubscription(m), nil
}

func deriveSubscription(m store.MemberRecord) ResolvedSubscription {
	abo := strings.TrimSpace(m.AboType)
	if !m.IsActive || abo == "" {
		return ResolvedSubscription{}
	}
	return ResolvedSubscription{
		Kind:     SubscriptionDerived,
		PlanName: abo,
		StartsAt: m.ValidFrom,
		EndsAt:   m.ValidTo,
	}
}
