package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// Now anchors every relative date in the seed. Zero means time.Now().
	Now time.Time
	// Location is the site timezone used to place the insurance payment in
	// the current year. Nil means UTC.
	Location *time.Location
	// InsuranceNote must match the note the access service looks for.
	InsuranceNote     string
	InsuranceFeeCents int64
}

type seedMember struct {
	id, code, uid, first, last, status string
}

// SeedDev loads a small fixed set of members covering the common scan
// outcomes. Safe to run repeatedly: every row uses a fixed id and
// INSERT OR IGNORE.
//
//	M001  active, free plan, insurance paid        -> allowed
//	M002  active, unpaid 50.00 plan, no insurance  -> outstanding balance
//	M003  suspended                                -> member not active
//	M004  active, paid up, plan ended yesterday    -> subscription expired
//	M005  active, aggregate-only plan, insurance   -> allowed (derived subscription)
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	if opt.InsuranceNote == "" {
		opt.InsuranceNote = "Assurance annuelle"
	}
	if opt.InsuranceFeeCents <= 0 {
		opt.InsuranceFeeCents = 4000
	}

	nowMs := now.UnixMilli()
	dayMs := int64(24 * time.Hour / time.Millisecond)
	local := now.In(loc)
	yearStartMs := time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc).UnixMilli()

	members := []seedMember{
		{"seed-m001", "M001", "04A1B2C3", "Alice", "Martin", "active"},
		{"seed-m002", "M002", "04D4E5F6", "Bruno", "Lambert", "active"},
		{"seed-m003", "M003", "04ABCDEF", "Chloé", "Dubois", "suspended"},
		{"seed-m004", "M004", "04123456", "David", "Peeters", "active"},
		{"seed-m005", "M005", "04FEDCBA", "Emma", "Janssens", "active"},
	}
	for _, m := range members {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO members(id, member_code, card_uid, first_name, last_name, status, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);`, m.id, m.code, m.uid, m.first, m.last, m.status, nowMs); err != nil {
			return fmt.Errorf("seed member %s: %w", m.code, err)
		}
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO member_subscription_info(member_id, member_status, is_active, abo_type, valid_from_ms, valid_to_ms, amount_due_cents)
VALUES ('seed-m005', 'active', 1, 'Mensuel', ?, ?, 0);`, nowMs-10*dayMs, nowMs+20*dayMs); err != nil {
		return fmt.Errorf("seed subscription info: %w", err)
	}

	subs := []struct {
		id, member, plan string
		price            int64
		startsMs         int64
		endsMs           any
	}{
		{"seed-s001", "seed-m001", "Découverte", 0, nowMs - 5*dayMs, nowMs + 30*dayMs},
		{"seed-s002", "seed-m002", "Mensuel", 5000, nowMs - 5*dayMs, nowMs + 25*dayMs},
		{"seed-s004", "seed-m004", "Mensuel", 5000, nowMs - 31*dayMs, nowMs - dayMs},
	}
	for _, s := range subs {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO subscriptions(id, member_id, plan_name, price_cents, starts_at_ms, ends_at_ms, status, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, 'active', ?);`, s.id, s.member, s.plan, s.price, s.startsMs, s.endsMs, s.startsMs); err != nil {
			return fmt.Errorf("seed subscription %s: %w", s.id, err)
		}
	}

	// Insurance for this year; M004 also paid its plan.
	payments := []struct {
		id, member string
		sub        any
		amount     int64
		note       string
	}{
		{"seed-p001", "seed-m001", nil, opt.InsuranceFeeCents, opt.InsuranceNote},
		{"seed-p004a", "seed-m004", nil, opt.InsuranceFeeCents, opt.InsuranceNote},
		{"seed-p004b", "seed-m004", "seed-s004", 5000, "Abonnement Mensuel"},
		{"seed-p005", "seed-m005", nil, opt.InsuranceFeeCents, opt.InsuranceNote},
	}
	for _, p := range payments {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO payments(id, member_id, subscription_id, amount_cents, note, method, paid_at_ms)
VALUES (?, ?, ?, ?, ?, 'cash', ?);`, p.id, p.member, p.sub, p.amount, p.note, max(yearStartMs, nowMs-dayMs)); err != nil {
			return fmt.Errorf("seed payment %s: %w", p.id, err)
		}
	}

	return nil
}
