package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/champions-academy/clubgate/internal/config"
	"github.com/champions-academy/clubgate/internal/db"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestMigrate_Status(t *testing.T) {
	t.Setenv("CLUBGATE_LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "gate.db")

	out := runCommand(t, "migrate", "--db", path, "--status")

	assert.Contains(t, out, "0001")
	assert.Contains(t, out, "init")
}

func TestSeed_LoadsDemoMembers(t *testing.T) {
	t.Setenv("CLUBGATE_LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "gate.db")

	runCommand(t, "seed", "--db", path)
	runCommand(t, "seed", "--db", path)

	conn, err := db.Open(context.Background(), db.Config{Path: path})
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n))
	assert.Equal(t, 5, n)
}

func TestSeed_SkipsOutsideDev(t *testing.T) {
	t.Setenv("CLUBGATE_LOG_LEVEL", "error")
	t.Setenv("CLUBGATE_ENV", "prod")
	path := filepath.Join(t.TempDir(), "gate.db")

	runCommand(t, "seed", "--db", path)

	conn, err := db.Open(context.Background(), db.Config{Path: path})
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n))
	assert.Zero(t, n)
}

func TestAccessPolicy_FromConfig(t *testing.T) {
	t.Setenv("CLUBGATE_DEFAULT_LOCATION", "Uccle")
	t.Setenv("CLUBGATE_DUPLICATE_WINDOW", "30s")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	p := accessPolicy(cfg)

	assert.Equal(t, "Uccle", p.DefaultLocation)
	assert.Equal(t, "Europe/Brussels", p.Timezone.String())
	assert.Equal(t, int64(4000), p.InsuranceFeeCents)
	assert.Equal(t, "30s", p.DuplicateWindow.String())
}

func TestNewLocker_DefaultsToMemory(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	locker, closeFn, err := newLocker(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	unlock, err := locker.Lock(context.Background(), "m1")
	require.NoError(t, err)
	unlock()
}
