package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveTranslation(t *testing.T) {
	t.Parallel()

	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.ObserveTranslation("times", true, time.Millisecond)
	m.ObserveTranslation("times", true, time.Millisecond)
	m.ObserveTranslation("fallback", true, time.Millisecond)
	m.ObserveTranslation("", false, time.Microsecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.translations.WithLabelValues("times")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.translations.WithLabelValues("fallback")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.emptyInputs))
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestObserveAnswer(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAnswer("wrong", "reversal")
	m.ObserveAnswer("correct", "")
	require.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("wrong", "reversal")))
	require.Equal(t, 2, testutil.CollectAndCount(m.outcomes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveTranslation("times", true, time.Second)
		m.ObserveAnswer("wrong", "rate")
	})
}

func TestRegisterTwiceFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	require.NoError(t, New().Register(reg))
	require.Error(t, New().Register(reg))
}
