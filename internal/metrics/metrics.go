package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the game engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GeneratorCalls   *prometheus.CounterVec
	QuotaDenials     *prometheus.CounterVec
	QuestionsServed  *prometheus.CounterVec
	GuessesMade      *prometheus.CounterVec
	GamesStarted     *prometheus.CounterVec
	GamesCompleted   *prometheus.CounterVec
	GeneratorLatency *prometheus.HistogramVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		GeneratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_generator_calls_total",
				Help: "External generator calls by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		QuotaDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_quota_denials_total",
				Help: "Quota reservations denied by model and reason",
			},
			[]string{"model", "reason"},
		),
		QuestionsServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_questions_served_total",
				Help: "Questions served by source (cache, generator, emergency)",
			},
			[]string{"source"},
		),
		GuessesMade: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_guesses_total",
				Help: "Guesses made by source (pattern, generator, emergency)",
			},
			[]string{"source"},
		),
		GamesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_games_started_total",
				Help: "Games started by domain",
			},
			[]string{"domain"},
		),
		GamesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akinator_games_completed_total",
				Help: "Games completed by domain and correctness",
			},
			[]string{"domain", "correct"},
		),
		GeneratorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "akinator_generator_call_duration_seconds",
				Help:    "Duration of external generator calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}

	m.registry.MustRegister(
		m.GeneratorCalls,
		m.QuotaDenials,
		m.QuestionsServed,
		m.GuessesMade,
		m.GamesStarted,
		m.GamesCompleted,
		m.GeneratorLatency,
	)
	return m
}

// ObserveGeneratorCall records one external call attempt.
func (m *Metrics) ObserveGeneratorCall(model, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.GeneratorCalls.WithLabelValues(model, outcome).Inc()
	m.GeneratorLatency.WithLabelValues(model).Observe(seconds)
}

// QuotaDenied records a denied reservation.
func (m *Metrics) QuotaDenied(model, reason string) {
	if m == nil {
		return
	}
	m.QuotaDenials.WithLabelValues(model, reason).Inc()
}

// QuestionServed records where a question came from.
func (m *Metrics) QuestionServed(source string) {
	if m == nil {
		return
	}
	m.QuestionsServed.WithLabelValues(source).Inc()
}

// GuessMade records where a guess came from.
func (m *Metrics) GuessMade(source string) {
	if m == nil {
		return
	}
	m.GuessesMade.WithLabelValues(source).Inc()
}

// GameStarted records a new game.
func (m *Metrics) GameStarted(domain string) {
	if m == nil {
		return
	}
	m.GamesStarted.WithLabelValues(domain).Inc()
}

// GameCompleted records a finished game.
func (m *Metrics) GameCompleted(domain string, correct bool) {
	if m == nil {
		return
	}
	m.GamesCompleted.WithLabelValues(domain, strconv.FormatBool(correct)).Inc()
}

// TrackActiveSessions registers a gauge reporting count() at scrape time.
// Errors from count are reported as zero.
func (m *Metrics) TrackActiveSessions(count func() (int, error)) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "akinator_active_sessions",
			Help: "Sessions currently held in the session store",
		},
		func() float64 {
			n, err := count()
			if err != nil {
				return 0
			}
			return float64(n)
		},
	))
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
