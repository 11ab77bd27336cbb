package types

import "time"

// ScanRequest is the wire body posted by a scan station. Code is the
// synonym the dashboard sends alongside uid; it is accepted and ignored.
type ScanRequest struct {
	UID      string `json:"uid" validate:"max=64"`
	Code     string `json:"code,omitempty" validate:"max=64"`
	Location string `json:"location,omitempty" validate:"max=128"`
}

type MemberIdentity struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MemberCode string `json:"member_code"`
}

type BalanceInfo struct {
	AmountDue float64 `json:"amount_due"` // currency units, two decimals
	Note      string  `json:"note"`
}

type ScanResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Member  *MemberIdentity `json:"member,omitempty"`
	Balance *BalanceInfo    `json:"balance,omitempty"`
}

type Outcome string

const (
	OutcomeAllowed   Outcome = "allowed"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeNotFound  Outcome = "not_found"
)

// Reason is the audit tag attached to a decision.
type Reason string

const (
	ReasonCheckin              Reason = "checkin"
	ReasonDuplicateScan        Reason = "duplicate_scan"
	ReasonMemberNotFound       Reason = "member_not_found"
	ReasonMemberNotActive      Reason = "member_not_active"
	ReasonOutstandingBalance   Reason = "outstanding_balance"
	ReasonNoActiveSubscription Reason = "no_active_subscription"
	ReasonSubscriptionExpired  Reason = "subscription_expired"
)

// Decision is the structured result of one scan. Rendering it into a
// localized ScanResponse is the transport's job.
type Decision struct {
	Outcome   Outcome
	Reason    Reason
	Member    *MemberIdentity
	Location  string
	DecidedAt time.Time

	// MemberStatus is the observed status for member_not_active.
	MemberStatus string
	// Balance is set for outstanding_balance.
	Balance *Balance
	// EndsAt is set for subscription_expired.
	EndsAt *time.Time
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllowed }
