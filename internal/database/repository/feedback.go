package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// FeedbackRepo handles user feedback reports.
type FeedbackRepo struct {
	db *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func (r *FeedbackRepo) Add(ctx context.Context, f Feedback) (Feedback, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = stamp(f.CreatedAt)
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO feedback(id, phrase, expected, issue, created_at) VALUES(?, ?, ?, ?, ?);
	`, f.ID, f.Phrase, f.Expected, f.Issue, f.CreatedAt)
	if err != nil {
		return Feedback{}, err
	}
	return f, nil
}

// List returns up to limit reports, newest first.
func (r *FeedbackRepo) List(ctx context.Context, limit int) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, phrase, expected, issue, created_at
	FROM feedback ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.Phrase, &f.Expected, &f.Issue, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows. keep <= 0 keeps everything.
func (r *FeedbackRepo) Prune(ctx context.Context, keep int) error {
	return prune(ctx, r.db, "feedback", keep)
}
