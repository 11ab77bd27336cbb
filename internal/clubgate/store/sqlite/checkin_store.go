package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/champions-academy/clubgate/internal/db"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type CheckinStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.CheckinStore = (*CheckinStore)(nil)

func NewCheckinStore(db *sql.DB, writer *dbpkg.Worker) *CheckinStore {
	return &CheckinStore{db: db, writer: writer}
}

func (s *CheckinStore) RecordCheckin(ctx context.Context, rec store.CheckinRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO checkins(id, member_id, scanned_at_ms, source, location)
VALUES (?, ?, ?, ?, ?);
`, rec.ID, rec.MemberID, store.ToMillis(rec.ScannedAt), rec.Source, rec.Location); err != nil {
			return fmt.Errorf("RecordCheckin insert: %w", err)
		}
		return nil
	})
}

func (s *CheckinStore) LastCheckin(ctx context.Context, memberID string) (time.Time, bool, error) {
	var ms sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
SELECT MAX(scanned_at_ms) FROM checkins WHERE member_id = ?;
`, memberID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !ms.Valid) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("LastCheckin query: %w", err)
	}
	return store.FromMillis(ms.Int64), true, nil
}

func (s *CheckinStore) ListRecent(ctx context.Context, limit int) ([]store.CheckinRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, member_id, scanned_at_ms, source, location
FROM checkins
ORDER BY scanned_at_ms DESC, id DESC
LIMIT ?;
`, store.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("ListRecent checkins: %w", err)
	}
	defer rows.Close()

	var out []store.CheckinRecord
	for rows.Next() {
		var (
			rec store.CheckinRecord
			ms  int64
		)
		if err := rows.Scan(&rec.ID, &rec.MemberID, &ms, &rec.Source, &rec.Location); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		rec.ScannedAt = store.FromMillis(ms)
		out = append(out, rec)
	}
	return out, rows.Err()
}
