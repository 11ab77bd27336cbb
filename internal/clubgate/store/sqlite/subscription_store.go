package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbpkg "github.com/champions-academy/clubgate/internal/db"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type SubscriptionStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.SubscriptionStore = (*SubscriptionStore)(nil)

func NewSubscriptionStore(db *sql.DB, writer *dbpkg.Worker) *SubscriptionStore {
	return &SubscriptionStore{db: db, writer: writer}
}

func (s *SubscriptionStore) LatestActive(ctx context.Context, memberID string) (store.SubscriptionRecord, bool, error) {
	var (
		rec       store.SubscriptionRecord
		startsMs  int64
		endsMs    sql.NullInt64
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, member_id, plan_name, price_cents, starts_at_ms, ends_at_ms, status, created_at_ms
FROM subscriptions
WHERE member_id = ? AND status = 'active'
ORDER BY created_at_ms DESC, id DESC
LIMIT 1;
`, memberID).Scan(
		&rec.ID, &rec.MemberID, &rec.PlanName, &rec.PriceCents,
		&startsMs, &endsMs, &rec.Status, &createdMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.SubscriptionRecord{}, false, nil
	}
	if err != nil {
		return store.SubscriptionRecord{}, false, fmt.Errorf("LatestActive query: %w", err)
	}
	rec.StartsAt = store.FromMillis(startsMs)
	rec.EndsAt = timePtr(endsMs)
	rec.CreatedAt = store.FromMillis(createdMs)
	return rec, true, nil
}

// Insert adds a subscription row. Used by the dev seed and tests.
func (s *SubscriptionStore) Insert(ctx context.Context, rec store.SubscriptionRecord) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO subscriptions(id, member_id, plan_name, price_cents, starts_at_ms, ends_at_ms, status, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.MemberID, rec.PlanName, rec.PriceCents,
			store.ToMillis(rec.StartsAt), nullMillis(rec.EndsAt), rec.Status, store.ToMillis(rec.CreatedAt),
		); err != nil {
			return fmt.Errorf("Insert subscription: %w", err)
		}
		return nil
	})
}
