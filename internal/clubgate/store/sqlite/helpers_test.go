package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/champions-academy/clubgate/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production. The connection is closed when the test ends.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Shared cache keeps the database alive for the pool's lifetime.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}
	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(w.Close)
	return w
}

func seedMember(t *testing.T, conn *sql.DB, id, code, uid, status string) {
	t.Helper()

	var card any
	if uid != "" {
		card = uid
	}
	if _, err := conn.Exec(`
INSERT INTO members(id, member_code, card_uid, first_name, last_name, status, created_at_ms)
VALUES (?, ?, ?, 'Test', ?, ?, 0);`, id, code, card, code, status); err != nil {
		t.Fatalf("seedMember %s: %v", id, err)
	}
}

func seedInfo(t *testing.T, conn *sql.DB, memberID, memberStatus, abo string, validTo time.Time, dueCents int64) {
	t.Helper()

	if _, err := conn.Exec(`
INSERT INTO member_subscription_info(member_id, member_status, is_active, abo_type, valid_to_ms, amount_due_cents)
VALUES (?, ?, 1, ?, ?, ?);`, memberID, memberStatus, abo, validTo.UnixMilli(), dueCents); err != nil {
		t.Fatalf("seedInfo %s: %v", memberID, err)
	}
}
