package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	_, err := Open("")
	require.ErrorIs(t, err, ErrNoPath)

	_, err = Open(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.ErrorContains(t, err, "ping db")

	db, err := Open(filepath.Join(t.TempDir(), "ok.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	require.Equal(t, 1, fk)
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	insert := func(tx *sql.Tx, detail string) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO mistakes (id, category, detail, created_at) VALUES (?, 'rate', ?, ?)`, detail, detail, Now())
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM mistakes`).Scan(&n))
		return n
	}

	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "rolled back"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, count())

	require.NoError(t, WithTx(ctx, db, func(tx *sql.Tx) error { return insert(tx, "kept") }))
	require.Equal(t, 1, count())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = WithTx(cancelled, db, func(*sql.Tx) error { return nil })
	require.ErrorContains(t, err, "begin tx")
}
