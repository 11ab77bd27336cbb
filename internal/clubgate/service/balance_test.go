package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/champions-academy/clubgate/internal/clubgate/service"
	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

func explicitSub(price int64) service.ResolvedSubscription {
	return service.ResolvedSubscription{Kind: service.SubscriptionExplicit, ID: "s1", PlanName: "Mensuel", PriceCents: price}
}

func TestComputeBalance_Formula(t *testing.T) {
	tests := []struct {
		name      string
		facts     service.BalanceFacts
		wantDue   int64
		wantOwed  int64
		wantDebts []types.DebtKind
	}{
		{
			name: "unpaid plan and insurance",
			facts: service.BalanceFacts{
				Subscription:      explicitSub(5000),
				InsuranceFeeCents: 4000,
			},
			wantDue:   9000,
			wantOwed:  9000,
			wantDebts: []types.DebtKind{types.DebtSubscription, types.DebtInsurance},
		},
		{
			name: "linked payment clears the plan",
			facts: service.BalanceFacts{
				TotalPaidCents:          5000,
				Subscription:            explicitSub(5000),
				SubscriptionPaymentSeen: true,
				InsurancePaidThisYear:   true,
				InsuranceFeeCents:       4000,
			},
			wantDue:   0,
			wantOwed:  -5000,
			wantDebts: []types.DebtKind{},
		},
		{
			name: "precomputed due is added",
			facts: service.BalanceFacts{
				PrecomputedDueCents:   1500,
				TotalPaidCents:        500,
				InsurancePaidThisYear: true,
				InsuranceFeeCents:     4000,
			},
			wantDue:   1500,
			wantOwed:  1000,
			wantDebts: []types.DebtKind{},
		},
		{
			name: "derived subscription never adds a price",
			facts: service.BalanceFacts{
				Subscription: service.ResolvedSubscription{
					Kind: service.SubscriptionDerived, PlanName: "Annuel", PriceCents: 9999,
				},
				InsurancePaidThisYear: true,
				InsuranceFeeCents:     4000,
			},
			wantDue:   0,
			wantOwed:  0,
			wantDebts: []types.DebtKind{},
		},
		{
			name: "free explicit plan adds nothing",
			facts: service.BalanceFacts{
				Subscription:      explicitSub(0),
				InsuranceFeeCents: 4000,
			},
			wantDue:   4000,
			wantOwed:  4000,
			wantDebts: []types.DebtKind{types.DebtInsurance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := service.ComputeBalance(tt.facts)
			assert.Equal(t, tt.wantDue, b.TotalDueCents)
			assert.Equal(t, tt.facts.TotalPaidCents, b.TotalPaidCents)
			assert.Equal(t, tt.wantOwed, b.AmountDueCents)

			kinds := make([]types.DebtKind, 0, len(b.Debts))
			for _, d := range b.Debts {
				kinds = append(kinds, d.Kind)
			}
			assert.Equal(t, tt.wantDebts, kinds)
		})
	}
}

func TestComputeBalance_Deterministic(t *testing.T) {
	f := service.BalanceFacts{
		PrecomputedDueCents: 250,
		TotalPaidCents:      1000,
		Subscription:        explicitSub(5000),
		InsuranceFeeCents:   4000,
	}
	first := service.ComputeBalance(f)
	for range 10 {
		assert.Equal(t, first, service.ComputeBalance(f))
	}
	assert.Equal(t, int64(5000+4000+250-1000), first.AmountDueCents)
	assert.Equal(t, "Subscription Mensuel: 50.00, Annual insurance: 40.00", first.Summary())
}

func TestBalanceSummary_Fallbacks(t *testing.T) {
	assert.Equal(t, types.PaymentPendingNote, types.Balance{AmountDueCents: 1500}.Summary())
	assert.Empty(t, types.Balance{AmountDueCents: -200}.Summary())
	assert.Equal(t, "Annual insurance: 40.00", types.Balance{
		AmountDueCents: 4000,
		Debts:          []types.DebtLine{{Kind: types.DebtInsurance, AmountCents: 4000}},
	}.Summary())
}

func TestInsuranceYearStart_UsesLocation(t *testing.T) {
	brussels, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 23:30 UTC on Dec 31 is already Jan 1 in Brussels.
	now := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	got := service.InsuranceYearStart(now, brussels)
	assert.Equal(t, 2026, got.Year())
	assert.True(t, got.Equal(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))

	utc := service.InsuranceYearStart(now, nil)
	assert.True(t, utc.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}
