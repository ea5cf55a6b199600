package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// HistoryRepo handles translation history.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Add stores t, assigning an id and timestamp when missing.
func (r *HistoryRepo) Add(ctx context.Context, t Translation) (Translation, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = stamp(t.CreatedAt)
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO translations(id, phrase, expression, pattern_id, created_at)
	VALUES(?, ?, ?, ?, ?);
	`, t.ID, t.Phrase, t.Expression, t.PatternID, t.CreatedAt)
	if err != nil {
		return Translation{}, err
	}
	return t, nil
}

// Recent lists up to limit translations, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]Translation, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, phrase, expression, pattern_id, created_at
	FROM translations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Translation
	for rows.Next() {
		var t Translation
		if err := rows.Scan(&t.ID, &t.Phrase, &t.Expression, &t.PatternID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows. keep <= 0 keeps everything.
func (r *HistoryRepo) Prune(ctx context.Context, keep int) error {
	return prune(ctx, r.db, "translations", keep)
}

// prune deletes all but the newest keep rows of table.
func prune(ctx context.Context, db *sql.DB, table string, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, `
	DELETE FROM `+table+` WHERE rowid NOT IN (
	 SELECT rowid FROM `+table+` ORDER BY created_at DESC, rowid DESC LIMIT ?
	)`, keep)
	return err
}
