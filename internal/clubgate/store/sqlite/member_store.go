package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/champions-academy/clubgate/internal/db"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type MemberStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.MemberStore = (*MemberStore)(nil)

func NewMemberStore(db *sql.DB, writer *dbpkg.Worker) *MemberStore {
	return &MemberStore{db: db, writer: writer}
}

const memberColumns = `
  id, COALESCE(member_code, ''), COALESCE(card_uid, ''), first_name, last_name, status, last_scan_at_ms,
  COALESCE(member_status, ''), is_active, COALESCE(abo_type, ''),
  valid_from_ms, valid_to_ms, amount_due_cents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (store.MemberRecord, error) {
	var (
		m                  store.MemberRecord
		lastScan, from, to sql.NullInt64
		isActive           int
	)
	if err := row.Scan(
		&m.ID, &m.MemberCode, &m.CardUID, &m.FirstName, &m.LastName, &m.Status, &lastScan,
		&m.MemberStatus, &isActive, &m.AboType,
		&from, &to, &m.AmountDueCents,
	); err != nil {
		return store.MemberRecord{}, err
	}
	m.IsActive = isActive == 1
	m.LastScanAt = timePtr(lastScan)
	m.ValidFrom = timePtr(from)
	m.ValidTo = timePtr(to)
	return m, nil
}

// FindByIdentifier matches card_uid first, then member_code, both
// case-insensitively.
func (s *MemberStore) FindByIdentifier(ctx context.Context, identifier string) (store.MemberRecord, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return store.MemberRecord{}, false, nil
	}

	m, err := scanMember(s.db.QueryRowContext(ctx, `
SELECT`+memberColumns+`
FROM v_member_directory
WHERE card_uid = ? COLLATE NOCASE OR member_code = ? COLLATE NOCASE
ORDER BY CASE WHEN card_uid = ? COLLATE NOCASE THEN 0 ELSE 1 END
LIMIT 1;
`, identifier, identifier, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return store.MemberRecord{}, false, nil
	}
	if err != nil {
		return store.MemberRecord{}, false, fmt.Errorf("FindByIdentifier query: %w", err)
	}
	return m, true, nil
}

func (s *MemberStore) FindByID(ctx context.Context, memberID string) (store.MemberRecord, bool, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `
SELECT`+memberColumns+`
FROM v_member_directory
WHERE id = ?;
`, memberID))
	if errors.Is(err, sql.ErrNoRows) {
		return store.MemberRecord{}, false, nil
	}
	if err != nil {
		return store.MemberRecord{}, false, fmt.Errorf("FindByID query: %w", err)
	}
	return m, true, nil
}

func (s *MemberStore) MarkSeen(ctx context.Context, memberID string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := store.ToMillis(t)

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE members SET last_scan_at_ms = ? WHERE id = ?;
`, ms, memberID); err != nil {
			return fmt.Errorf("MarkSeen update member: %w", err)
		}
		return nil
	})
}
