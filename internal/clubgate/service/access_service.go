package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
	"github.com/champions-academy/clubgate/internal/clubgate/store/memory"
	"github.com/champions-academy/clubgate/internal/clubgate/types"
	"github.com/champions-academy/clubgate/internal/metrics"
)

const (
	DefaultLocation          = "Ixelles"
	DefaultInsuranceFeeCents = 4000
	DefaultInsuranceNote     = "Assurance annuelle"
	DefaultScanTimeout       = 3 * time.Second
	DefaultPaymentMethod     = "cash"

	auditWriteTimeout = 2 * time.Second
)

type AccessPolicy struct {
	// DefaultLocation is used when a scan arrives without a location.
	DefaultLocation   string
	InsuranceFeeCents int64
	// InsuranceNote identifies the annual insurance payment in the ledger.
	InsuranceNote string
	// ScanTimeout bounds one whole decision. Zero disables it.
	ScanTimeout time.Duration
	// DuplicateWindow, when positive, turns a repeat scan inside the window
	// into an allowed decision that records no new check-in.
	DuplicateWindow time.Duration
	// Timezone places the insurance year boundary.
	Timezone *time.Location
}

func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		DefaultLocation:   DefaultLocation,
		InsuranceFeeCents: DefaultInsuranceFeeCents,
		InsuranceNote:     DefaultInsuranceNote,
		ScanTimeout:       DefaultScanTimeout,
		Timezone:          time.UTC,
	}
}

type Dependencies struct {
	Members       store.MemberStore
	Subscriptions store.SubscriptionStore
	Payments      store.PaymentStore
	Checkins      store.CheckinStore
	Audit         store.AuditStore
	// Locker defaults to an in-process keyed mutex.
	Locker store.MemberLocker
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type AccessService struct {
	directory *MemberDirectory
	subs      store.SubscriptionStore
	payments  store.PaymentStore
	checkins  store.CheckinStore
	audit     store.AuditStore
	locker    store.MemberLocker
	policy    AccessPolicy
	logger    *slog.Logger
	now       func() time.Time
}

func NewAccessService(deps Dependencies, policy AccessPolicy) *AccessService {
	if deps.Locker == nil {
		deps.Locker = memory.NewMemberLocker()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if strings.TrimSpace(policy.DefaultLocation) == "" {
		policy.DefaultLocation = DefaultLocation
	}
	if policy.InsuranceNote == "" {
		policy.InsuranceNote = DefaultInsuranceNote
	}
	if policy.Timezone == nil {
		policy.Timezone = time.UTC
	}

	return &AccessService{
		directory: NewMemberDirectory(deps.Members),
		subs:      deps.Subscriptions,
		payments:  deps.Payments,
		checkins:  deps.Checkins,
		audit:     deps.Audit,
		locker:    deps.Locker,
		policy:    policy,
		logger:    deps.Logger.With("component", "access"),
		now:       deps.Now,
	}
}

// Scan decides one card scan or typed member code. Every decided outcome,
// allowed or not, writes exactly one audit event. The error return is
// reserved for invalid input, timeouts and store failures; rejections are
// reported through Decision.
func (s *AccessService) Scan(ctx context.Context, req types.ScanRequest) (types.Decision, error) {
	identifier := NormalizeIdentifier(req.UID)
	if identifier == "" {
		metrics.ScanErrorsTotal.WithLabelValues("invalid").Inc()
		return types.Decision{}, ErrInvalidIdentifier
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = s.policy.DefaultLocation
	}

	start := time.Now()
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	d, err := s.scan(ctx, identifier, location)
	metrics.ScanDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		err = mapDeadline(err)
		kind := "internal"
		if errors.Is(err, ErrServiceUnavailable) {
			kind = "unavailable"
		}
		metrics.ScanErrorsTotal.WithLabelValues(kind).Inc()
		return types.Decision{}, err
	}

	metrics.ScanDecisionsTotal.WithLabelValues(string(d.Outcome), string(d.Reason)).Inc()
	s.logger.Debug("scan decided",
		"uid", identifier,
		"location", location,
		"outcome", d.Outcome,
		"reason", d.Reason,
	)
	return d, nil
}

func (s *AccessService) scan(ctx context.Context, identifier, location string) (types.Decision, error) {
	now := s.now().UTC()
	meta := map[string]any{"uid": identifier, "location": location}

	m, ok, err := s.directory.Resolve(ctx, identifier)
	if err != nil {
		return types.Decision{}, fmt.Errorf("Scan resolve member: %w", err)
	}
	if !ok {
		d := types.Decision{
			Outcome:   types.OutcomeNotFound,
			Reason:    types.ReasonMemberNotFound,
			Location:  location,
			DecidedAt: now,
		}
		s.recordRejection(ctx, "", d, meta)
		return d, nil
	}

	identity := memberIdentity(m)
	meta["member_code"] = m.MemberCode

	if !IsActive(m) {
		status := EffectiveStatus(m)
		d := types.Decision{
			Outcome:      types.OutcomeForbidden,
			Reason:       types.ReasonMemberNotActive,
			Member:       identity,
			Location:     location,
			DecidedAt:    now,
			MemberStatus: status,
		}
		meta["member_status"] = status
		s.recordRejection(ctx, m.ID, d, meta)
		return d, nil
	}

	// Everything from here to the commit reads state the commit depends on.
	unlock, err := s.locker.Lock(ctx, m.ID)
	if err != nil {
		return types.Decision{}, fmt.Errorf("Scan lock member: %w", err)
	}
	defer unlock()

	sub, err := ResolveSubscription(ctx, s.subs, m)
	if err != nil {
		return types.Decision{}, fmt.Errorf("Scan resolve subscription: %w", err)
	}

	bal, err := s.computeBalance(ctx, m, sub, now)
	if err != nil {
		return types.Decision{}, fmt.Errorf("Scan compute balance: %w", err)
	}

	if bal.AmountDueCents > 0 {
		d := types.Decision{
			Outcome:   types.OutcomeForbidden,
			Reason:    types.ReasonOutstandingBalance,
			Member:    identity,
			Location:  location,
			DecidedAt: now,
			Balance:   &bal,
		}
		meta["amount_due"] = types.CentsToUnits(bal.AmountDueCents)
		meta["amount_due_cents"] = bal.AmountDueCents
		meta["total_due_cents"] = bal.TotalDueCents
		meta["total_paid_cents"] = bal.TotalPaidCents
		meta["note"] = bal.Summary()
		s.recordRejection(ctx, m.ID, d, meta)
		return d, nil
	}

	if !sub.Exists() {
		d := types.Decision{
			Outcome:   types.OutcomeForbidden,
			Reason:    types.ReasonNoActiveSubscription,
			Member:    identity,
			Location:  location,
			DecidedAt: now,
		}
		s.recordRejection(ctx, m.ID, d, meta)
		return d, nil
	}

	if sub.ExpiredAt(now) {
		d := types.Decision{
			Outcome:   types.OutcomeForbidden,
			Reason:    types.ReasonSubscriptionExpired,
			Member:    identity,
			Location:  location,
			DecidedAt: now,
			EndsAt:    sub.EndsAt,
		}
		meta["ends_at"] = sub.EndsAt.UTC().Format(time.RFC3339)
		meta["subscription"] = sub.Kind.String()
		s.recordRejection(ctx, m.ID, d, meta)
		return d, nil
	}

	meta["method"] = store.CheckinSourceRFID
	meta["member_id"] = m.ID

	if s.policy.DuplicateWindow > 0 {
		last, seen, err := s.checkins.LastCheckin(ctx, m.ID)
		if err != nil {
			return types.Decision{}, fmt.Errorf("Scan last checkin: %w", err)
		}
		if seen && now.Sub(last) < s.policy.DuplicateWindow {
			meta["last_checkin_at"] = last.UTC().Format(time.RFC3339)
			s.recordAudit(ctx, store.AuditEventRecord{
				Actor:     actorName(m),
				Action:    store.AuditActionCheckinDuplicate,
				Entity:    store.AuditEntityCheckin,
				EntityID:  m.ID,
				Meta:      meta,
				CreatedAt: now,
			})
			return types.Decision{
				Outcome:   types.OutcomeAllowed,
				Reason:    types.ReasonDuplicateScan,
				Member:    identity,
				Location:  location,
				DecidedAt: now,
			}, nil
		}
	}

	checkin := store.CheckinRecord{
		ID:        uuid.NewString(),
		MemberID:  m.ID,
		ScannedAt: now,
		Source:    store.CheckinSourceRFID,
		Location:  location,
	}
	if err := s.checkins.RecordCheckin(ctx, checkin); err != nil {
		return types.Decision{}, fmt.Errorf("Scan record checkin: %w", err)
	}
	if err := s.directory.NoteSeen(ctx, m.ID, now); err != nil {
		return types.Decision{}, fmt.Errorf("Scan mark seen: %w", err)
	}

	// Every scan event is keyed by member id so the feed joins on members.
	meta["checkin_id"] = checkin.ID
	s.recordAudit(ctx, store.AuditEventRecord{
		Actor:     actorName(m),
		Action:    store.AuditActionCheckin,
		Entity:    store.AuditEntityCheckin,
		EntityID:  m.ID,
		Meta:      meta,
		CreatedAt: now,
	})

	return types.Decision{
		Outcome:   types.OutcomeAllowed,
		Reason:    types.ReasonCheckin,
		Member:    identity,
		Location:  location,
		DecidedAt: now,
	}, nil
}

// Balance previews what a scan would compute for the member, without
// writing anything.
func (s *AccessService) Balance(ctx context.Context, identifier string) (types.MemberBalance, error) {
	identifier = NormalizeIdentifier(identifier)
	if identifier == "" {
		return types.MemberBalance{}, ErrInvalidIdentifier
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	now := s.now().UTC()

	m, ok, err := s.directory.Resolve(ctx, identifier)
	if err != nil {
		return types.MemberBalance{}, mapDeadline(fmt.Errorf("Balance resolve member: %w", err))
	}
	if !ok {
		return types.MemberBalance{}, ErrMemberNotFound
	}

	sub, err := ResolveSubscription(ctx, s.subs, m)
	if err != nil {
		return types.MemberBalance{}, mapDeadline(fmt.Errorf("Balance resolve subscription: %w", err))
	}
	bal, err := s.computeBalance(ctx, m, sub, now)
	if err != nil {
		return types.MemberBalance{}, mapDeadline(fmt.Errorf("Balance compute: %w", err))
	}

	return types.MemberBalance{
		Member:          *memberIdentity(m),
		Balance:         bal,
		AmountDue:       types.CentsToUnits(bal.AmountDueCents),
		HasSubscription: sub.Exists(),
		PlanName:        sub.PlanName,
		EndsAt:          sub.EndsAt,
	}, nil
}

// PayInsurance records this year's insurance payment for the member.
// Calling it again in the same year returns the existing state with
// AlreadyPaid set and writes nothing.
func (s *AccessService) PayInsurance(ctx context.Context, memberID, method string) (types.InsurancePayment, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return types.InsurancePayment{}, ErrInvalidMemberID
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = DefaultPaymentMethod
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	now := s.now().UTC()
	yearStart := InsuranceYearStart(now, s.policy.Timezone)

	m, ok, err := s.directory.Get(ctx, memberID)
	if err != nil {
		return types.InsurancePayment{}, mapDeadline(fmt.Errorf("PayInsurance find member: %w", err))
	}
	if !ok {
		return types.InsurancePayment{}, ErrMemberNotFound
	}

	unlock, err := s.locker.Lock(ctx, m.ID)
	if err != nil {
		return types.InsurancePayment{}, mapDeadline(fmt.Errorf("PayInsurance lock member: %w", err))
	}
	defer unlock()

	out := types.InsurancePayment{
		MemberID:    m.ID,
		Year:        yearStart.Year(),
		AmountCents: s.policy.InsuranceFeeCents,
	}

	paid, err := s.payments.HasNotePaymentBetween(ctx, m.ID, s.policy.InsuranceNote, yearStart, now)
	if err != nil {
		return types.InsurancePayment{}, mapDeadline(fmt.Errorf("PayInsurance check existing: %w", err))
	}
	if paid {
		out.AlreadyPaid = true
		return out, nil
	}

	rec := store.PaymentRecord{
		ID:          uuid.NewString(),
		MemberID:    m.ID,
		AmountCents: s.policy.InsuranceFeeCents,
		Note:        s.policy.InsuranceNote,
		Method:      method,
		PaidAt:      now,
	}
	if err := s.payments.RecordPayment(ctx, rec); err != nil {
		return types.InsurancePayment{}, mapDeadline(fmt.Errorf("PayInsurance record payment: %w", err))
	}

	s.recordAudit(ctx, store.AuditEventRecord{
		Actor:    store.AuditActorSystem,
		Action:   store.AuditActionInsurancePaid,
		Entity:   store.AuditEntityPayment,
		EntityID: rec.ID,
		Meta: map[string]any{
			"member_id":    m.ID,
			"member_code":  m.MemberCode,
			"year":         out.Year,
			"amount_cents": rec.AmountCents,
			"method":       method,
		},
		CreatedAt: now,
	})

	out.PaymentID = rec.ID
	out.PaidAt = &now
	return out, nil
}

func (s *AccessService) computeBalance(
	ctx context.Context,
	m store.MemberRecord,
	sub ResolvedSubscription,
	now time.Time,
) (types.Balance, error) {
	paid, err := s.payments.SumByMember(ctx, m.ID)
	if err != nil {
		return types.Balance{}, err
	}

	var subPaid bool
	if sub.Kind == SubscriptionExplicit && sub.PriceCents > 0 {
		subPaid, err = s.payments.HasSubscriptionPayment(ctx, m.ID, sub.ID)
		if err != nil {
			return types.Balance{}, err
		}
	}

	insured, err := s.payments.HasNotePaymentBetween(ctx, m.ID, s.policy.InsuranceNote,
		InsuranceYearStart(now, s.policy.Timezone), now)
	if err != nil {
		return types.Balance{}, err
	}

	return ComputeBalance(BalanceFacts{
		PrecomputedDueCents:     m.AmountDueCents,
		TotalPaidCents:          paid,
		Subscription:            sub,
		SubscriptionPaymentSeen: subPaid,
		InsurancePaidThisYear:   insured,
		InsuranceFeeCents:       s.policy.InsuranceFeeCents,
	}), nil
}

func (s *AccessService) recordRejection(ctx context.Context, memberID string, d types.Decision, meta map[string]any) {
	meta["reason"] = string(d.Reason)
	s.recordAudit(ctx, store.AuditEventRecord{
		Actor:     store.AuditActorSystem,
		Action:    store.AuditActionScanRejected,
		Entity:    store.AuditEntityCheckin,
		EntityID:  memberID,
		Meta:      meta,
		CreatedAt: d.DecidedAt,
	})
}

// recordAudit persists an audit event. A failed write is logged and counted
// but never changes the decision already taken. The write gets its own
// deadline so an exhausted scan deadline does not drop the record.
func (s *AccessService) recordAudit(ctx context.Context, rec store.AuditEventRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.audit.RecordEvent(ctx, rec); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		s.logger.Error("audit write failed",
			"action", rec.Action,
			"entity_id", rec.EntityID,
			"error", err,
		)
	}
}

func (s *AccessService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.ScanTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.policy.ScanTimeout)
}

func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return err
}

func memberIdentity(m store.MemberRecord) *types.MemberIdentity {
	return &types.MemberIdentity{
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		MemberCode: m.MemberCode,
	}
}

func actorName(m store.MemberRecord) string {
	if n := m.DisplayName(); n != "" {
		return n
	}
	return m.MemberCode
}
