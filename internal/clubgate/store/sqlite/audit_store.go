package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/champions-academy/clubgate/internal/db"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

type AuditStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.AuditStore = (*AuditStore)(nil)

func NewAuditStore(db *sql.DB, writer *dbpkg.Worker) *AuditStore {
	return &AuditStore{db: db, writer: writer}
}

func (s *AuditStore) RecordEvent(ctx context.Context, rec store.AuditEventRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	meta := rec.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("RecordEvent encode meta: %w", err)
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO audit_logs(id, actor, action, entity, entity_id, meta_json, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.Actor, rec.Action, rec.Entity, nullString(rec.EntityID),
			string(metaJSON), store.ToMillis(rec.CreatedAt),
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}

func (s *AuditStore) ListRecent(ctx context.Context, limit int) ([]store.AuditEventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, actor, action, entity, COALESCE(entity_id, ''), meta_json, created_at_ms
FROM audit_logs
ORDER BY created_at_ms DESC, id DESC
LIMIT ?;
`, store.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("ListRecent audit_logs: %w", err)
	}
	defer rows.Close()

	var out []store.AuditEventRecord
	for rows.Next() {
		var (
			rec      store.AuditEventRecord
			metaJSON string
			ms       int64
		)
		if err := rows.Scan(&rec.ID, &rec.Actor, &rec.Action, &rec.Entity, &rec.EntityID, &metaJSON, &ms); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &rec.Meta); err != nil {
			return nil, fmt.Errorf("ListRecent decode meta %s: %w", rec.ID, err)
		}
		rec.CreatedAt = store.FromMillis(ms)
		out = append(out, rec)
	}
	return out, rows.Err()
}
