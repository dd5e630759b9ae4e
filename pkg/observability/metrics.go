package observability

import (
	"context"
	"sync"
	"time"

	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quotechat"

// Metrics holds the session collectors.
type Metrics struct {
	Sessions  *prometheus.CounterVec
	Answers   *prometheus.CounterVec
	Steps     *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Duration  *prometheus.HistogramVec

	mu     sync.Mutex
	opened map[string]time.Time
}

// NewMetrics registers the collectors on reg. A nil reg uses a private registry,
// which keeps repeated construction in tests from panicking.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Accepted answers by step and branch.",
		}, []string{"step", "branch"}),
		Steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_revealed_total",
			Help:      "Steps revealed to the user.",
		}, []string{"step"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Recoverable failures absorbed by a session.",
		}, []string{"reason"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Time from open to summary reveal.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600},
		}, []string{"problem"}),
		opened: make(map[string]time.Time),
	}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(_ context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues("open").Inc()
			m.mu.Lock()
			m.opened[e.SessionID] = e.Timestamp
			m.mu.Unlock()
		},
		OnClose: func(_ context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues("close").Inc()
			m.mu.Lock()
			delete(m.opened, e.SessionID)
			m.mu.Unlock()
		},
		OnComplete: func(_ context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues("complete").Inc()
			m.mu.Lock()
			start, ok := m.opened[e.SessionID]
			delete(m.opened, e.SessionID)
			m.mu.Unlock()
			if ok {
				m.Duration.WithLabelValues(string(e.Problem)).Observe(e.Timestamp.Sub(start).Seconds())
			}
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Step.String()).Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.StepEvent) {
			m.Answers.WithLabelValues(e.Step.String(), e.Branch.String()).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.FallbackEvent) {
			m.Fallbacks.WithLabelValues(e.Reason).Inc()
		},
	}
}
