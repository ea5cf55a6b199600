package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/mathverbal/internal/metrics"
	"github.com/jask/mathverbal/internal/translator"
)

// Mistake categories.
const (
	CategoryReversal    = "reversal"
	CategoryInequality  = "inequality"
	CategoryPercent     = "percent"
	CategoryRate        = "rate"
	CategoryParentheses = "parentheses"
	CategoryVariable    = "variable"
)

// Categories lists every mistake category in display order.
var Categories = []string{
	CategoryReversal, CategoryInequality, CategoryPercent,
	CategoryRate, CategoryParentheses, CategoryVariable,
}

// CategoryFor maps a pattern id to the mistake category a wrong answer
// for it is filed under.
func CategoryFor(patternID string) string {
	switch patternID {
	case translator.IDMoreThan, translator.IDLessThan:
		return CategoryReversal
	case translator.IDAtLeast, translator.IDAtMost:
		return CategoryInequality
	case translator.IDPercentOf:
		return CategoryPercent
	case translator.IDRate, translator.IDRatio:
		return CategoryRate
	case translator.IDProductOf, translator.IDTimes:
		return CategoryParentheses
	default:
		return CategoryVariable
	}
}

// StatisticsSink receives practice mistakes. The translator keeps no
// counters of its own.
type StatisticsSink interface {
	RecordOutcome(ctx context.Context, category, detail string) error
}

// Verdict is the grade of one practice answer.
type Verdict string

const (
	VerdictCorrect  Verdict = "correct"
	VerdictNearMiss Verdict = "near_miss"
	VerdictWrong    Verdict = "wrong"
	VerdictSkipped  Verdict = "skipped"
)

// Question is a practice prompt.
type Question struct {
	Phrase    string   `json:"phrase"`
	Expected  string   `json:"expected"`
	PatternID string   `json:"patternId"`
	Choices   []string `json:"choices"`
}

// Grade is the outcome of checking an answer.
type Grade struct {
	Verdict  Verdict `json:"verdict"`
	Expected string  `json:"expected"`
	Category string  `json:"category,omitempty"`
}

const (
	defaultPracticePhrase = "three more than a number"
	defaultChoices        = 4
	nearMissDistance      = 2
)

var distractors = []string{"x - 3", "3x", "x + 3", "x/3", "3 + x", "3 - x", "x * 3"}

// PracticeService builds questions and grades answers.
type PracticeService struct {
	Translator *translator.Translator
	Sink       StatisticsSink
	Metrics    *metrics.Metrics
	// Choices is the size of the multiple-choice set, including the answer.
	Choices int
	// Rand shuffles choices; nil uses math/rand/v2.
	Rand translator.Rand
}

func (s *PracticeService) translator() *translator.Translator {
	if s.Translator != nil {
		return s.Translator
	}
	return translator.Default()
}

func (s *PracticeService) intN(n int) int {
	if s.Rand != nil {
		return s.Rand.IntN(n)
	}
	return rand.IntN(n)
}

// NewQuestion asks for another phrase of the same category as res. A
// result without a generator gets a fixed starter phrase.
func (s *PracticeService) NewQuestion(res translator.Result) Question {
	phrase := defaultPracticePhrase
	if res.Generator != nil {
		phrase = res.Generator()
	}
	expected, _ := s.translator().Translate(phrase)

	n := s.Choices
	if n <= 0 {
		n = defaultChoices
	}
	n = min(n, len(distractors)+1)

	choices := []string{expected.Expression}
	pool := slices.Clone(distractors)
	for len(choices) < n && len(pool) > 0 {
		i := s.intN(len(pool))
		d := pool[i]
		pool = slices.Delete(pool, i, i+1)
		if !slices.Contains(choices, d) {
			choices = append(choices, d)
		}
	}
	for i := len(choices) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		choices[i], choices[j] = choices[j], choices[i]
	}

	return Question{Phrase: phrase, Expected: expected.Expression, PatternID: expected.PatternID, Choices: choices}
}

func compact(s string) string {
	return strings.ReplaceAll(translator.Normalize(s), " ", "")
}

// CheckAnswer grades a typed answer. Blank answers are skipped and not
// recorded; any other miss is filed with the sink under the pattern's
// category.
func (s *PracticeService) CheckAnswer(ctx context.Context, q Question, answer string) (Grade, error) {
	g := Grade{Expected: q.Expected}
	if strings.TrimSpace(answer) == "" {
		g.Verdict = VerdictSkipped
		s.Metrics.ObserveAnswer(string(g.Verdict), "")
		return g, nil
	}

	got, want := compact(answer), compact(q.Expected)
	switch d := levenshtein.ComputeDistance(got, want); {
	case d == 0:
		g.Verdict = VerdictCorrect
		s.Metrics.ObserveAnswer(string(g.Verdict), "")
		return g, nil
	case d <= nearMissDistance:
		g.Verdict = VerdictNearMiss
	default:
		g.Verdict = VerdictWrong
	}
	g.Category = CategoryFor(q.PatternID)
	return g, s.record(ctx, g, q.Phrase)
}

// CheckChoice grades a multiple-choice pick. Wrong picks are filed as
// parentheses mistakes.
func (s *PracticeService) CheckChoice(ctx context.Context, q Question, choice string) (Grade, error) {
	g := Grade{Expected: q.Expected}
	if choice == q.Expected {
		g.Verdict = VerdictCorrect
		s.Metrics.ObserveAnswer(string(g.Verdict), "")
		return g, nil
	}
	g.Verdict = VerdictWrong
	g.Category = CategoryParentheses
	return g, s.record(ctx, g, q.Phrase)
}

func (s *PracticeService) record(ctx context.Context, g Grade, phrase string) error {
	s.Metrics.ObserveAnswer(string(g.Verdict), g.Category)
	if s.Sink == nil {
		return nil
	}
	if err := s.Sink.RecordOutcome(ctx, g.Category, phrase); err != nil {
		return fmt.Errorf("record mistake: %w", err)
	}
	return nil
}
