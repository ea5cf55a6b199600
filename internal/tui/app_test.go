package tui

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/mathverbal/internal/database"
	"github.com/jask/mathverbal/internal/database/repository"
	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
)

type countingSink struct{ categories []string }

func (s *countingSink) RecordOutcome(_ context.Context, category, _ string) error {
	s.categories = append(s.categories, category)
	return nil
}

func newTestApp(sink service.StatisticsSink) *App {
	tr := translator.New(translator.WithRand(rand.New(rand.NewPCG(1, 2))))
	return New(context.Background(), Services{
		Translations: &service.TranslationService{Translator: tr},
		Practice:     &service.PracticeService{Translator: tr, Sink: sink, Rand: rand.New(rand.NewPCG(3, 4))},
	})
}

// run executes cmd and feeds every resulting message back into the app.
func run(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(a, c)
		}
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}
	_, next := a.Update(msg)
	run(a, next)
}

func typeText(a *App, text string) {
	for _, r := range text {
		if r == ' ' {
			a.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(a *App, k tea.KeyType) {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	run(a, cmd)
}

func TestTranslateFlow(t *testing.T) {
	t.Parallel()

	a := newTestApp(nil)
	run(a, a.Init())

	typeText(a, "3 more than twice a numberq")
	press(a, tea.KeyBackspace)
	require.Equal(t, "3 more than twice a number", a.inputBuffer)

	press(a, tea.KeyEnter)
	require.NotNil(t, a.result)
	require.Equal(t, "2x + 3", a.result.Expression)
	view := a.View()
	require.Contains(t, view, "2x + 3")
	require.Contains(t, view, translator.IDMoreThan)

	press(a, tea.KeyEsc)
	require.Empty(t, a.inputBuffer)

	press(a, tea.KeyEnter)
	require.Equal(t, "type a phrase", a.status)

	typeText(a, "?!")
	press(a, tea.KeyEnter)
	require.Nil(t, a.result)
	require.Equal(t, "nothing to translate", a.status)
}

func TestPracticeFlow(t *testing.T) {
	t.Parallel()

	sink := &countingSink{}
	a := newTestApp(sink)

	typeText(a, "twice a number")
	press(a, tea.KeyEnter)
	press(a, tea.KeyCtrlP)
	require.Equal(t, viewPractice, a.state)
	require.NotNil(t, a.question)
	require.Equal(t, translator.IDTimes, a.question.PatternID)

	typeText(a, a.question.Expected)
	press(a, tea.KeyEnter)
	require.NotNil(t, a.grade)
	require.Equal(t, service.VerdictCorrect, a.grade.Verdict)
	require.Contains(t, a.View(), "Correct!")

	press(a, tea.KeyCtrlN)
	require.Nil(t, a.grade)
	require.Empty(t, a.answerBuffer)

	// Pick a wrong choice with the arrow keys.
	wrong := -1
	for i, c := range a.question.Choices {
		if c != a.question.Expected {
			wrong = i
			break
		}
	}
	require.GreaterOrEqual(t, wrong, 0)
	for range wrong + 1 {
		press(a, tea.KeyDown)
	}
	require.Equal(t, wrong, a.choiceCursor)
	press(a, tea.KeyEnter)
	require.Equal(t, service.VerdictWrong, a.grade.Verdict)
	require.Equal(t, []string{service.CategoryParentheses}, sink.categories)

	press(a, tea.KeyEsc)
	require.Equal(t, viewTranslate, a.state)
}

func TestQuestionUsesResultAtKeyPress(t *testing.T) {
	t.Parallel()

	a := newTestApp(nil)
	typeText(a, "twice a number")
	press(a, tea.KeyEnter)
	require.Equal(t, translator.IDTimes, a.result.PatternID)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)

	// A newer translation lands before the command runs.
	later, ok := translator.Translate("a number is at least 5")
	require.True(t, ok)
	a.Update(resultMsg{phrase: "a number is at least 5", res: later, ok: true})

	run(a, cmd)
	require.NotNil(t, a.question)
	require.Equal(t, translator.IDTimes, a.question.PatternID)
}

func TestTabCyclesViewsAndQuit(t *testing.T) {
	t.Parallel()

	a := newTestApp(nil)
	for _, want := range []appState{viewPractice, viewStats, viewHistory, viewTranslate} {
		press(a, tea.KeyTab)
		require.Equal(t, want, a.state)
	}

	// "q" is text while translating.
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.Nil(t, cmd)
	require.Equal(t, "q", a.inputBuffer)

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStatsFeedbackAndReset(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tui.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mistakes := repository.NewMistakeRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	tr := translator.New()
	a := New(context.Background(), Services{
		Translations: &service.TranslationService{Translator: tr, History: repository.NewHistoryRepo(db)},
		Practice:     &service.PracticeService{Translator: tr, Sink: &service.MistakeSink{Mistakes: mistakes}},
		Stats:        &service.StatsService{Mistakes: mistakes},
		Feedback:     &service.FeedbackService{Feedback: feedback},
		Maintenance:  &service.MaintenanceService{DB: db},
	})
	run(a, a.Init())
	require.NotNil(t, a.summary)

	typeText(a, "x percent of 50")
	press(a, tea.KeyEnter)
	require.Len(t, a.history, 1)

	press(a, tea.KeyCtrlF)
	require.Equal(t, modalFeedback, a.modal)
	typeText(a, "0.01x * 50")
	press(a, tea.KeyTab)
	typeText(a, "percent looks odd")
	press(a, tea.KeyEnter)
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, "feedback saved, thank you", a.status)

	saved, err := feedback.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, "x percent of 50", saved[0].Phrase)
	require.Equal(t, "0.01x * 50", saved[0].Expected)
	require.Equal(t, "percent looks odd", saved[0].Issue)

	_, err = mistakes.Add(context.Background(), repository.Mistake{Category: service.CategoryPercent, Detail: "x percent of 50"})
	require.NoError(t, err)

	press(a, tea.KeyTab)
	press(a, tea.KeyTab)
	require.Equal(t, viewStats, a.state)
	require.Equal(t, 1, a.summary.Counts[service.CategoryPercent])
	require.Contains(t, a.View(), "x percent of 50")

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.Equal(t, modalConfirmReset, a.modal)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	run(a, cmd)
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, 0, a.summary.Counts[service.CategoryPercent])

	press(a, tea.KeyTab)
	require.Equal(t, viewHistory, a.state)
	require.True(t, strings.Contains(a.View(), "x percent of 50"))
}
