// Package metrics экспортирует игровые метрики Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spotdiff"

// Metrics - все метрики игры. Методы безопасны для nil.
type Metrics struct {
	SessionsStarted  *prometheus.CounterVec
	SessionsFinished *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	Clicks           *prometheus.CounterVec
	RoundDuration    prometheus.Histogram
	ScoresSubmitted  *prometheus.CounterVec
	SubmitFailures   prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New регистрирует метрики в reg (prometheus.DefaultRegisterer в проде)
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Rounds started by difficulty",
		}, []string{"difficulty"}),
		SessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Rounds finished by difficulty and reason (timeout, completed)",
		}, []string{"difficulty", "reason"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Rounds currently in playing state",
		}),
		Clicks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Clicks by outcome (hit, miss, already_found)",
		}, []string{"outcome"}),
		RoundDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Wall time from start to finish of a round",
			Buckets:   []float64{5, 10, 20, 30, 45, 60, 90},
		}),
		ScoresSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_submitted_total",
			Help:      "Scores accepted by the leaderboard",
		}, []string{"difficulty"}),
		SubmitFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submit_failures_total",
			Help:      "Score submissions rejected by the leaderboard store",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) SessionStarted(difficulty string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(difficulty).Inc()
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionFinished(difficulty, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.SessionsFinished.WithLabelValues(difficulty, reason).Inc()
	m.ActiveSessions.Dec()
	m.RoundDuration.Observe(d.Seconds())
}

// SessionAbandoned - раунд брошен до окончания (выход или перезапуск)
func (m *Metrics) SessionAbandoned() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) Click(outcome string) {
	if m == nil {
		return
	}
	m.Clicks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScoreSubmitted(difficulty string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SubmitFailures.Inc()
		return
	}
	m.ScoresSubmitted.WithLabelValues(difficulty).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
