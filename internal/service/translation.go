package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jask/mathverbal/internal/database/repository"
	"github.com/jask/mathverbal/internal/metrics"
	"github.com/jask/mathverbal/internal/translator"
)

const defaultHistoryKeep = 500

// TranslationService wraps the translator with history and metrics.
// History and Metrics are optional. History keeps the newest Keep rows.
type TranslationService struct {
	Translator *translator.Translator
	History    *repository.HistoryRepo
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Keep       int
}

func (s *TranslationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *TranslationService) translator() *translator.Translator {
	if s.Translator != nil {
		return s.Translator
	}
	return translator.Default()
}

// Translate translates phrase and records it. A history write failure is
// logged and does not affect the result.
func (s *TranslationService) Translate(ctx context.Context, phrase string) (translator.Result, bool) {
	start := time.Now()
	res, ok := s.translator().Translate(phrase)
	s.Metrics.ObserveTranslation(res.PatternID, ok, time.Since(start))
	if !ok {
		return res, false
	}
	s.logger().Debug("translated", "pattern", res.PatternID, "expression", res.Expression)

	if s.History != nil {
		s.record(ctx, repository.Translation{
			Phrase:     strings.TrimSpace(phrase),
			Expression: res.Expression,
			PatternID:  res.PatternID,
		})
	}
	return res, true
}

func (s *TranslationService) record(ctx context.Context, t repository.Translation) {
	if _, err := s.History.Add(ctx, t); err != nil {
		s.logger().Warn("record history", "err", err)
		return
	}
	keep := s.Keep
	if keep <= 0 {
		keep = defaultHistoryKeep
	}
	if err := s.History.Prune(ctx, keep); err != nil {
		s.logger().Warn("prune history", "err", err)
	}
}

// Recent lists the newest n translations.
func (s *TranslationService) Recent(ctx context.Context, n int) ([]repository.Translation, error) {
	if s.History == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.History.Recent(ctx, n)
}
