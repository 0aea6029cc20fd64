package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "intake.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"admin_user", "token", "intake_submissions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.sqlite")
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO intake_submissions (id, created_at, name, email, user_type, status) VALUES ('a', CURRENT_TIMESTAMP, 'n', 'e@x.com', 'other', 'new')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM intake_submissions`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenRejectsStatusOutsideSet(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "intake.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO intake_submissions (id, created_at, name, email, user_type, status) VALUES ('a', CURRENT_TIMESTAMP, 'n', 'e@x.com', 'other', 'archived')`)

	assert.Error(t, err)
}
