package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "docs.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
	require.FileExists(t, path)
}
