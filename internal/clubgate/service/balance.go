package service

import (
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

// BalanceFacts is everything the balance depends on, gathered from the
// stores beforehand so ComputeBalance stays pure.
type BalanceFacts struct {
	PrecomputedDueCents int64
	TotalPaidCents      int64

	Subscription            ResolvedSubscription
	SubscriptionPaymentSeen bool

	InsurancePaidThisYear bool
	InsuranceFeeCents     int64
}

// ComputeBalance applies:
//
//	due  = precomputed + unpaid explicit plan price + unpaid insurance fee
//	owed = due - paid
//
// Only an explicit subscription with a positive price and no linked payment
// adds a debt line.
func ComputeBalance(f BalanceFacts) types.Balance {
	b := types.Balance{
		TotalDueCents:  f.PrecomputedDueCents,
		TotalPaidCents: f.TotalPaidCents,
		Debts:          []types.DebtLine{},
	}

	sub := f.Subscription
	if sub.Kind == SubscriptionExplicit && sub.PriceCents > 0 && !f.SubscriptionPaymentSeen {
		b.TotalDueCents += sub.PriceCents
		b.Debts = append(b.Debts, types.DebtLine{
			Kind:        types.DebtSubscription,
			Label:       sub.PlanName,
			AmountCents: sub.PriceCents,
		})
	}

	if !f.InsurancePaidThisYear && f.InsuranceFeeCents > 0 {
		b.TotalDueCents += f.InsuranceFeeCents
		b.Debts = append(b.Debts, types.DebtLine{
			Kind:        types.DebtInsurance,
			AmountCents: f.InsuranceFeeCents,
		})
	}

	b.AmountDueCents = b.TotalDueCents - b.TotalPaidCents
	return b
}

// InsuranceYearStart is midnight on January 1st of now's year in loc.
func InsuranceYearStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
}
