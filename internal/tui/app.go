package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mathverbal/internal/database/repository"
	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
)

const historySize = 10

// App ties together views.
type App struct {
	ctx      context.Context
	services Services
	state    appState
	modal    modalState
	status   string

	// translate view
	inputBuffer string
	phrase      string
	result      *translator.Result

	// practice view
	question     *service.Question
	answerBuffer string
	choiceCursor int // -1 when no choice is highlighted
	grade        *service.Grade

	// feedback modal
	feedbackExpected string
	feedbackIssue    string
	feedbackField    int

	summary *service.Summary
	history []repository.Translation
}

// Services are the backends the views call. Only Translations is required.
type Services struct {
	Translations *service.TranslationService
	Practice     *service.PracticeService
	Stats        *service.StatsService
	Feedback     *service.FeedbackService
	Maintenance  *service.MaintenanceService
}

type appState string

const (
	viewTranslate appState = "translate"
	viewPractice  appState = "practice"
	viewStats     appState = "stats"
	viewHistory   appState = "history"
)

var viewOrder = []appState{viewTranslate, viewPractice, viewStats, viewHistory}

type modalState string

const (
	modalNone         modalState = ""
	modalConfirmReset modalState = "confirmReset"
	modalFeedback     modalState = "feedback"
)

func New(ctx context.Context, services Services) *App {
	return &App{
		ctx:          ctx,
		services:     services,
		state:        viewTranslate,
		choiceCursor: -1,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadStats(), a.loadHistory())
}

// messages
type resultMsg struct {
	phrase string
	res    translator.Result
	ok     bool
}

type questionMsg service.Question

type gradeMsg service.Grade

type statsMsg service.Summary

type historyMsg []repository.Translation

type statusMsg string

type errMsg struct{ error }

// commands
func (a *App) translateCmd(phrase string) tea.Cmd {
	return func() tea.Msg {
		res, ok := a.services.Translations.Translate(a.ctx, phrase)
		return resultMsg{phrase: phrase, res: res, ok: ok}
	}
}

// questionCmd snapshots the current result; the command runs off the
// update loop.
func (a *App) questionCmd() tea.Cmd {
	practice := a.services.Practice
	var res translator.Result
	if a.result != nil {
		res = *a.result
	}
	return func() tea.Msg {
		if practice == nil {
			return errMsg{errors.New("practice not configured")}
		}
		return questionMsg(practice.NewQuestion(res))
	}
}

func (a *App) answerCmd(q service.Question, answer string, choice string) tea.Cmd {
	return func() tea.Msg {
		var (
			g   service.Grade
			err error
		)
		if choice != "" {
			g, err = a.services.Practice.CheckChoice(a.ctx, q, choice)
		} else {
			g, err = a.services.Practice.CheckAnswer(a.ctx, q, answer)
		}
		if err != nil {
			return errMsg{err}
		}
		return gradeMsg(g)
	}
}

func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		if a.services.Stats == nil {
			return statsMsg{}
		}
		sum, err := a.services.Stats.Summary(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return statsMsg(sum)
	}
}

func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		list, err := a.services.Translations.Recent(a.ctx, historySize)
		if errors.Is(err, service.ErrStoreNotConfigured) {
			return historyMsg(nil)
		}
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(list)
	}
}

func (a *App) resetStatsCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Maintenance == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		if err := a.services.Maintenance.ResetStats(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("mistake stats cleared")
	}
}

func (a *App) feedbackCmd(phrase, expected, issue string) tea.Cmd {
	return func() tea.Msg {
		if a.services.Feedback == nil {
			return errMsg{fmt.Errorf("feedback not configured")}
		}
		if _, err := a.services.Feedback.Submit(a.ctx, phrase, expected, issue); err != nil {
			return errMsg{err}
		}
		return statusMsg("feedback saved, thank you")
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if m.Type == tea.KeyTab {
			a.nextView()
			if a.state == viewStats {
				return a, a.loadStats()
			}
			if a.state == viewHistory {
				return a, a.loadHistory()
			}
			return a, nil
		}
		switch a.state {
		case viewPractice:
			return a.handlePracticeKey(m)
		case viewStats, viewHistory:
			return a.handleListKey(m)
		default:
			return a.handleTranslateKey(m)
		}
	case resultMsg:
		a.phrase = m.phrase
		if !m.ok {
			a.result = nil
			a.status = "nothing to translate"
			return a, nil
		}
		a.result = &m.res
		a.status = ""
		return a, a.loadHistory()
	case questionMsg:
		q := service.Question(m)
		a.question = &q
		a.grade = nil
		a.answerBuffer = ""
		a.choiceCursor = -1
		a.state = viewPractice
	case gradeMsg:
		g := service.Grade(m)
		a.grade = &g
		if g.Category != "" {
			return a, a.loadStats()
		}
	case statsMsg:
		sum := service.Summary(m)
		if sum.Counts == nil {
			a.summary = nil
		} else {
			a.summary = &sum
		}
	case historyMsg:
		a.history = []repository.Translation(m)
	case statusMsg:
		a.status = string(m)
		return a, a.loadStats()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) nextView() {
	for i, v := range viewOrder {
		if v == a.state {
			a.state = viewOrder[(i+1)%len(viewOrder)]
			a.status = ""
			return
		}
	}
	a.state = viewTranslate
}

func (a *App) handleTranslateKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+p":
		if a.services.Practice == nil {
			a.status = "practice not configured"
			return a, nil
		}
		return a, a.questionCmd()
	case "ctrl+f":
		if a.phrase == "" {
			a.status = "translate a phrase first"
			return a, nil
		}
		a.modal = modalFeedback
		a.feedbackExpected, a.feedbackIssue, a.feedbackField = "", "", 0
		return a, nil
	}
	switch m.Type {
	case tea.KeyEsc:
		a.inputBuffer = ""
		a.status = ""
	case tea.KeyEnter:
		text := strings.TrimSpace(a.inputBuffer)
		if text == "" {
			a.status = "type a phrase"
			return a, nil
		}
		return a, a.translateCmd(text)
	default:
		a.inputBuffer = editBuffer(a.inputBuffer, m)
	}
	return a, nil
}

func (a *App) handlePracticeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+n":
		return a, a.questionCmd()
	case "up":
		if a.question != nil && a.choiceCursor > -1 {
			a.choiceCursor--
		}
		return a, nil
	case "down":
		if a.question != nil && a.choiceCursor < len(a.question.Choices)-1 {
			a.choiceCursor++
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyEsc:
		a.state = viewTranslate
	case tea.KeyEnter:
		if a.question == nil {
			return a, a.questionCmd()
		}
		answer := a.answerBuffer
		if strings.TrimSpace(answer) == "" && a.choiceCursor >= 0 {
			return a, a.answerCmd(*a.question, "", a.question.Choices[a.choiceCursor])
		}
		return a, a.answerCmd(*a.question, answer, "")
	default:
		a.answerBuffer = editBuffer(a.answerBuffer, m)
	}
	return a, nil
}

func (a *App) handleListKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "esc":
		a.state = viewTranslate
	case "r":
		if a.state == viewStats {
			a.modal = modalConfirmReset
		}
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmReset:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			return a, a.resetStatsCmd()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalFeedback:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
		case tea.KeyTab:
			a.feedbackField = 1 - a.feedbackField
		case tea.KeyEnter:
			a.modal = modalNone
			return a, a.feedbackCmd(a.phrase, a.feedbackExpected, a.feedbackIssue)
		default:
			if a.feedbackField == 0 {
				a.feedbackExpected = editBuffer(a.feedbackExpected, m)
			} else {
				a.feedbackIssue = editBuffer(a.feedbackIssue, m)
			}
		}
	}
	return a, nil
}

// editBuffer applies a text-editing key to buf.
func editBuffer(buf string, m tea.KeyMsg) string {
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if r := []rune(buf); len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return buf + " "
	case tea.KeyRunes:
		return buf + string(m.Runes)
	}
	return buf
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	exprStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))
	trapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewPractice:
		body = a.renderPractice()
	case viewStats:
		body = a.renderStats()
	case viewHistory:
		body = a.renderHistory()
	default:
		body = a.renderTranslate()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		body += "\n" + a.status
	}
	return body
}

func (a *App) renderTranslate() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Translate"))
	fmt.Fprintf(&b, "\n> %s_\n", a.inputBuffer)
	if a.result != nil {
		r := a.result
		fmt.Fprintf(&b, "\n%s  %s\n", exprStyle.Render(r.Expression), dimStyle.Render(r.MathForm))
		fmt.Fprintf(&b, "%s (%s)\n", r.Label, r.PatternID)
		for _, line := range r.Explanation {
			b.WriteString("  • " + line + "\n")
		}
		for _, trap := range r.Traps {
			b.WriteString(trapStyle.Render("  ! "+trap) + "\n")
		}
	}
	b.WriteString("\n[enter] Translate  [ctrl+p] Practice  [ctrl+f] Feedback  [tab] Next view  [ctrl+c] Quit")
	return b.String()
}

func (a *App) renderPractice() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Practice"))
	if a.question == nil {
		b.WriteString("\n[enter] New question  [esc] Back")
		return b.String()
	}
	fmt.Fprintf(&b, "\nTranslate: %s\n> %s_\n\n", a.question.Phrase, a.answerBuffer)
	for i, c := range a.question.Choices {
		cursor := "  "
		if i == a.choiceCursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%d) %s\n", cursor, i+1, c)
	}
	if a.grade != nil {
		switch a.grade.Verdict {
		case service.VerdictCorrect:
			b.WriteString("\n" + correctStyle.Render("Correct!"))
		case service.VerdictSkipped:
			b.WriteString("\n" + dimStyle.Render("Skipped. Type an answer or pick a choice."))
		case service.VerdictNearMiss:
			b.WriteString("\n" + wrongStyle.Render("Almost. Expected "+a.grade.Expected))
		default:
			b.WriteString("\n" + wrongStyle.Render("Not quite. Expected "+a.grade.Expected))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n[enter] Check  [up/down] Pick choice  [ctrl+n] Next  [esc] Back")
	return b.String()
}

func (a *App) renderStats() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mistakes"))
	if a.summary == nil {
		b.WriteString("\nNo stats store configured.\n[esc] Back")
		return b.String()
	}
	top := 1
	for _, n := range a.summary.Counts {
		top = max(top, n)
	}
	for _, c := range service.Categories {
		n := a.summary.Counts[c]
		bar := strings.Repeat("█", n*20/top)
		fmt.Fprintf(&b, "\n%-12s %-20s %d", c, bar, n)
	}
	if len(a.summary.Recent) > 0 {
		b.WriteString("\n\nRecent:")
		for _, m := range a.summary.Recent {
			fmt.Fprintf(&b, "\n- %s: %s", m.Category, m.Detail)
		}
	}
	b.WriteString("\n\n[r] Reset stats  [tab] Next view  [esc] Back  [q] Quit")
	return b.String()
}

func (a *App) renderHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("History"))
	if len(a.history) == 0 {
		b.WriteString("\nNo translations yet.")
	}
	for _, t := range a.history {
		fmt.Fprintf(&b, "\n%s  %-32s → %s", t.CreatedAt.Local().Format("02/01 15:04"), t.Phrase, t.Expression)
	}
	b.WriteString("\n\n[tab] Next view  [esc] Back  [q] Quit")
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmReset:
		return titleStyle.Render("Clear mistake stats?") + "\n[y] Yes  [n] No"
	case modalFeedback:
		expected, issue := a.feedbackExpected, a.feedbackIssue
		if a.feedbackField == 0 {
			expected += "_"
		} else {
			issue += "_"
		}
		return titleStyle.Render("Report a translation") +
			fmt.Sprintf("\nPhrase:   %s\nExpected: %s\nIssue:    %s\n[tab] Switch field  [enter] Send  [esc] Cancel", a.phrase, expected, issue)
	}
	return ""
}
