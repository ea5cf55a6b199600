package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jask/mathverbal/internal/database"
	"github.com/jask/mathverbal/internal/database/repository"
	"github.com/jask/mathverbal/internal/metrics"
	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
)

type fixture struct {
	handler  http.Handler
	mistakes *repository.MistakeRepo
}

func newFixture(t *testing.T, withStore bool) fixture {
	t.Helper()

	tr := translator.New(translator.WithRand(rand.New(rand.NewPCG(1, 2))))
	m := metrics.New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	s := &Server{
		Translations: &service.TranslationService{Translator: tr, Metrics: m},
		Practice:     &service.PracticeService{Translator: tr, Metrics: m, Choices: 4},
		Gatherer:     reg,
	}
	var f fixture
	if withStore {
		dbPath := filepath.Join(t.TempDir(), "test.db")
		require.NoError(t, database.RunMigrations(dbPath))
		db, err := database.Open(dbPath)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		f.mistakes = repository.NewMistakeRepo(db)
		s.Translations.History = repository.NewHistoryRepo(db)
		s.Practice.Sink = &service.MistakeSink{Mistakes: f.mistakes}
		s.Stats = &service.StatsService{Mistakes: f.mistakes}
	}
	f.handler = s.Handler()
	return f
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/translate", `{"phrase":"3 more than twice a number"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]map[string]any](t, rec)
	res := body["result"]
	require.Equal(t, "2x + 3", res["expression"])
	require.Equal(t, "more_than", res["patternId"])
	require.Equal(t, "Addition (reversed order)", res["label"])
	require.NotEmpty(t, res["explanation"])
	require.NotContains(t, res, "Generator")
}

func TestTranslateEmptyPhrase(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/translate", `{"phrase":"  ?! "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"result":null}`, rec.Body.String())
}

func TestTranslateBadRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	for _, body := range []string{`{"phrase":1}`, `{"text":"x"}`, `{"phrase":"x"} {}`, `not json`} {
		rec := f.do(t, http.MethodPost, "/translate", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}

	big := `{"phrase":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := f.do(t, http.MethodPost, "/translate", big)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/translate", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/patterns", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]translator.PatternInfo](t, rec)
	require.Len(t, body["patterns"], 18)
	require.Equal(t, translator.IDMoreThan, body["patterns"][0].ID)
	require.Equal(t, translator.IDRate, body["patterns"][17].ID)
}

func TestPracticeRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	rec := f.do(t, http.MethodPost, "/practice/question", `{"phrase":"a number is at least 5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[service.Question](t, rec)
	require.Equal(t, translator.IDAtLeast, q.PatternID)
	require.Contains(t, q.Choices, q.Expected)

	qJSON, err := json.Marshal(q)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/practice/answer", `{"question":`+string(qJSON)+`,"answer":"`+q.Expected+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, service.VerdictCorrect, decode[service.Grade](t, rec).Verdict)

	rec = f.do(t, http.MethodPost, "/practice/answer", `{"question":`+string(qJSON)+`,"answer":"y = 100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[service.Grade](t, rec)
	require.Equal(t, service.VerdictWrong, g.Verdict)
	require.Equal(t, service.CategoryInequality, g.Category)

	rec = f.do(t, http.MethodPost, "/practice/answer", `{"question":`+string(qJSON)+`,"choice":"not it"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, service.CategoryParentheses, decode[service.Grade](t, rec).Category)

	rec = f.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[service.Summary](t, rec)
	require.Equal(t, 1, sum.Counts[service.CategoryInequality])
	require.Equal(t, 1, sum.Counts[service.CategoryParentheses])
	require.Equal(t, 0, sum.Counts[service.CategoryPercent])
	require.Len(t, sum.Recent, 2)
}

func TestPracticeQuestionForUnmatchedPhrase(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/practice/question", `{"phrase":"purple elephants"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[service.Question](t, rec)
	require.Equal(t, "three more than a number", q.Phrase)
	require.Equal(t, "x + 3", q.Expected)
}

func TestAnswerRequiresQuestion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/practice/answer", `{"answer":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsWithoutStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	f.do(t, http.MethodPost, "/translate", `{"phrase":"f of x"}`)
	rec = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `mathverbal_translator_translations_total{pattern_id="function_of"} 1`)
}

func TestRecovererAnswers500(t *testing.T) {
	t.Parallel()

	s := &Server{}
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	s := &Server{
		Translations: &service.TranslationService{},
		Practice:     &service.PracticeService{},
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	resp, err := http.Post(url+"/translate", "application/json", bytes.NewBufferString(`{"phrase":"twice a number"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
