package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/champions-academy/clubgate/internal/db"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type PaymentStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.PaymentStore = (*PaymentStore)(nil)

func NewPaymentStore(db *sql.DB, writer *dbpkg.Worker) *PaymentStore {
	return &PaymentStore{db: db, writer: writer}
}

func (s *PaymentStore) SumByMember(ctx context.Context, memberID string) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE member_id = ?;
`, memberID).Scan(&total); err != nil {
		return 0, fmt.Errorf("SumByMember query: %w", err)
	}
	return total, nil
}

func (s *PaymentStore) HasSubscriptionPayment(ctx context.Context, memberID, subscriptionID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM payments WHERE member_id = ? AND subscription_id = ?;
`, memberID, subscriptionID).Scan(&n); err != nil {
		return false, fmt.Errorf("HasSubscriptionPayment query: %w", err)
	}
	return n > 0, nil
}

func (s *PaymentStore) HasNotePaymentBetween(ctx context.Context, memberID, note string, from, to time.Time) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM payments
WHERE member_id = ? AND note = ? AND paid_at_ms >= ? AND paid_at_ms <= ?;
`, memberID, note, store.ToMillis(from), store.ToMillis(to)).Scan(&n); err != nil {
		return false, fmt.Errorf("HasNotePaymentBetween query: %w", err)
	}
	return n > 0, nil
}

func (s *PaymentStore) RecordPayment(ctx context.Context, rec store.PaymentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PaidAt.IsZero() {
		rec.PaidAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO payments(id, member_id, subscription_id, amount_cents, note, method, paid_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.MemberID, nullString(rec.SubscriptionID), rec.AmountCents,
			rec.Note, rec.Method, store.ToMillis(rec.PaidAt),
		); err != nil {
			return fmt.Errorf("RecordPayment insert: %w", err)
		}
		return nil
	})
}
