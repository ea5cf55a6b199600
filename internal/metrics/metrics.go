// Package metrics holds the Prometheus collectors for translation and
// practice activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mathverbal"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	translations *prometheus.CounterVec // by pattern_id
	emptyInputs  prometheus.Counter
	duration     prometheus.Histogram
	outcomes     *prometheus.CounterVec // by result (correct/near_miss/wrong/skipped) and category
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "translations_total",
			Help:      "Translations produced, by matched pattern id",
		}, []string{"pattern_id"}),

		emptyInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "empty_inputs_total",
			Help:      "Phrases that were empty after normalization",
		}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "translate_duration_seconds",
			Help:      "Time spent translating one phrase",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "practice",
			Name:      "answers_total",
			Help:      "Graded practice answers, by result and mistake category",
		}, []string{"result", "category"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.translations, m.emptyInputs, m.duration, m.outcomes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveTranslation records one Translate call.
func (m *Metrics) ObserveTranslation(patternID string, ok bool, took time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(took.Seconds())
	if !ok {
		m.emptyInputs.Inc()
		return
	}
	m.translations.WithLabelValues(patternID).Inc()
}

// ObserveAnswer records a graded practice answer. category is empty for
// answers that were not wrong.
func (m *Metrics) ObserveAnswer(result, category string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(result, category).Inc()
}
