package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DebtKind string

const (
	DebtSubscription DebtKind = "subscription"
	DebtInsurance    DebtKind = "insurance"
)

// DebtLine is one unpaid obligation that contributed to TotalDueCents.
// Label carries the plan name for subscription debts.
type DebtLine struct {
	Kind        DebtKind `json:"kind"`
	Label       string   `json:"label,omitempty"`
	AmountCents int64    `json:"amount_cents"`
}

// Balance amounts are integer cents. AmountDueCents may be negative when
// the member is in credit.
type Balance struct {
	TotalDueCents  int64      `json:"total_due_cents"`
	TotalPaidCents int64      `json:"total_paid_cents"`
	AmountDueCents int64      `json:"amount_due_cents"`
	Debts          []DebtLine `json:"debts"`
}

// MemberBalance is the balance preview returned to the dashboard.
type MemberBalance struct {
	Member          MemberIdentity `json:"member"`
	Balance         Balance        `json:"balance"`
	AmountDue       float64        `json:"amount_due"`
	HasSubscription bool           `json:"has_subscription"`
	PlanName        string         `json:"plan_name,omitempty"`
	EndsAt          *time.Time     `json:"ends_at,omitempty"`
}

// InsurancePayment reports the outcome of recording the annual insurance.
type InsurancePayment struct {
	MemberID    string     `json:"member_id"`
	Year        int        `json:"year"`
	AmountCents int64      `json:"amount_cents"`
	AlreadyPaid bool       `json:"already_paid"`
	PaymentID   string     `json:"payment_id,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// FormatCents renders minor units as a fixed two-decimal string ("90.00").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// CentsToUnits converts minor units to currency units for display only.
func CentsToUnits(cents int64) float64 {
	return decimal.New(cents, -2).Round(2).InexactFloat64()
}

// PaymentPendingNote stands in for the debt lines when a positive balance
// has no itemised cause, e.g. an externally precomputed amount.
const PaymentPendingNote = "Payment pending"

// Summary renders the debt lines for logs and audit metadata, e.g.
// "Subscription Mensuel: 50.00, Annual insurance: 40.00".
func (b Balance) Summary() string {
	if len(b.Debts) == 0 {
		if b.AmountDueCents > 0 {
			return PaymentPendingNote
		}
		return ""
	}
	parts := make([]string, 0, len(b.Debts))
	for _, d := range b.Debts {
		switch d.Kind {
		case DebtSubscription:
			parts = append(parts, "Subscription "+d.Label+": "+FormatCents(d.AmountCents))
		case DebtInsurance:
			parts = append(parts, "Annual insurance: "+FormatCents(d.AmountCents))
		}
	}
	return strings.Join(parts, ", ")
}
