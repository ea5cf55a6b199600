package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// MistakeRepo handles practice mistakes.
type MistakeRepo struct {
	db *sql.DB
}

func NewMistakeRepo(db *sql.DB) *MistakeRepo { return &MistakeRepo{db: db} }

func (r *MistakeRepo) Add(ctx context.Context, m Mistake) (Mistake, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = stamp(m.CreatedAt)
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO mistakes(id, category, detail, created_at) VALUES(?, ?, ?, ?);
	`, m.ID, m.Category, m.Detail, m.CreatedAt)
	if err != nil {
		return Mistake{}, err
	}
	return m, nil
}

// Counts returns the number of mistakes per category.
func (r *MistakeRepo) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM mistakes GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[cat] = n
	}
	return out, rows.Err()
}

// Recent lists up to limit mistakes, newest first.
func (r *MistakeRepo) Recent(ctx context.Context, limit int) ([]Mistake, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, category, detail, created_at
	FROM mistakes ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mistake
	for rows.Next() {
		var m Mistake
		if err := rows.Scan(&m.ID, &m.Category, &m.Detail, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows. keep <= 0 keeps everything.
func (r *MistakeRepo) Prune(ctx context.Context, keep int) error {
	return prune(ctx, r.db, "mistakes", keep)
}
