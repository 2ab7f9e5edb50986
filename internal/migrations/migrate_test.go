package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/moveops/internal/db"
)

func TestUpIsRepeatableAndReportsVersion(t *testing.T) {
	SetLogger(nil)

	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(database, "../../migrations"))
	require.NoError(t, Up(database, "../../migrations"))

	version, err := Version(database)
	require.NoError(t, err)
	require.EqualValues(t, 2, version)

	for _, table := range []string{"items", "rate_cards", "vehicle_tiers", "extra_services", "margin_policy", "quotes"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestUpMissingDirectory(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "missing.db"))
	require.NoError(t, err)
	defer database.Close()

	require.Error(t, Up(database, filepath.Join(t.TempDir(), "nope")))
}
