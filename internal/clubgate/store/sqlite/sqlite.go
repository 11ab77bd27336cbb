// Package sqlite implements the clubgate stores on top of SQLite. Reads go
// straight to *sql.DB; every write is funnelled through db.Worker.
package sqlite

import (
	"database/sql"
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

func nullMillis(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return store.ToMillis(*t)
}

func timePtr(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := store.FromMillis(ms.Int64)
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
