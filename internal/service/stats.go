package service

import (
	"context"
	"fmt"

	"github.com/jask/mathverbal/internal/database/repository"
)

const (
	defaultMistakeKeep = 200
	recentMistakes     = 5
)

// MistakeSink stores practice mistakes in the mistakes table, keeping the
// newest Keep rows.
type MistakeSink struct {
	Mistakes *repository.MistakeRepo
	Keep     int
}

func (s *MistakeSink) RecordOutcome(ctx context.Context, category, detail string) error {
	if s.Mistakes == nil {
		return ErrStoreNotConfigured
	}
	if _, err := s.Mistakes.Add(ctx, repository.Mistake{Category: category, Detail: detail}); err != nil {
		return fmt.Errorf("add mistake: %w", err)
	}
	keep := s.Keep
	if keep <= 0 {
		keep = defaultMistakeKeep
	}
	if err := s.Mistakes.Prune(ctx, keep); err != nil {
		return fmt.Errorf("prune mistakes: %w", err)
	}
	return nil
}

// Summary is the mistake dashboard.
type Summary struct {
	Counts map[string]int       `json:"counts"`
	Recent []repository.Mistake `json:"recent"`
}

// StatsService reports on recorded mistakes.
type StatsService struct {
	Mistakes *repository.MistakeRepo
}

// Summary counts mistakes per category, with every category present, and
// lists the most recent few.
func (s *StatsService) Summary(ctx context.Context) (Summary, error) {
	if s.Mistakes == nil {
		return Summary{}, ErrStoreNotConfigured
	}
	counts, err := s.Mistakes.Counts(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count mistakes: %w", err)
	}
	for _, c := range Categories {
		if _, ok := counts[c]; !ok {
			counts[c] = 0
		}
	}
	recent, err := s.Mistakes.Recent(ctx, recentMistakes)
	if err != nil {
		return Summary{}, fmt.Errorf("recent mistakes: %w", err)
	}
	if recent == nil {
		recent = []repository.Mistake{}
	}
	return Summary{Counts: counts, Recent: recent}, nil
}
