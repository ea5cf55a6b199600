package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/mathverbal/internal/database/repository"
)

const defaultFeedbackKeep = 100

// FeedbackService stores user reports about wrong translations.
type FeedbackService struct {
	Feedback *repository.FeedbackRepo
	Keep     int
}

// Submit stores a report and drops the oldest beyond Keep.
func (s *FeedbackService) Submit(ctx context.Context, phrase, expected, issue string) (repository.Feedback, error) {
	if s.Feedback == nil {
		return repository.Feedback{}, ErrStoreNotConfigured
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return repository.Feedback{}, ErrEmptyFeedback
	}
	f, err := s.Feedback.Add(ctx, repository.Feedback{
		Phrase:   phrase,
		Expected: strings.TrimSpace(expected),
		Issue:    strings.TrimSpace(issue),
	})
	if err != nil {
		return repository.Feedback{}, fmt.Errorf("add feedback: %w", err)
	}
	keep := s.Keep
	if keep <= 0 {
		keep = defaultFeedbackKeep
	}
	if err := s.Feedback.Prune(ctx, keep); err != nil {
		return f, fmt.Errorf("prune feedback: %w", err)
	}
	return f, nil
}

// List returns the newest n reports.
func (s *FeedbackService) List(ctx context.Context, n int) ([]repository.Feedback, error) {
	if s.Feedback == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.Feedback.List(ctx, n)
}
