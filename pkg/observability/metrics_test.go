package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEvent(id string, at time.Time, p domain.Problem) *domain.SessionEvent {
	return &domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, SessionID: id},
		Problem:   p,
	}
}

func TestMetrics_RecordsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	h.OnOpen(ctx, sessionEvent("a", start, ""))
	h.OnStep(ctx, &domain.StepEvent{Step: domain.StepProblem})
	h.OnAnswer(ctx, &domain.StepEvent{Step: domain.StepProblem, Branch: domain.BranchFlat})
	h.OnAnswer(ctx, &domain.StepEvent{Step: domain.StepVehicle, Branch: domain.BranchFlat})
	h.OnFallback(ctx, &domain.FallbackEvent{Reason: "location_denied"})
	h.OnComplete(ctx, sessionEvent("a", start.Add(40*time.Second), domain.ProblemFlat))
	h.OnClose(ctx, sessionEvent("a", start.Add(time.Minute), domain.ProblemFlat))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("close")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steps.WithLabelValues("problem")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("vehicle", "flat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("location_denied")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	count, err := testutil.GatherAndCount(reg, "quotechat_answers_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_CompleteWithoutOpenSkipsDuration(t *testing.T) {
	m := observability.NewMetrics(nil)
	m.Hooks().OnComplete(context.Background(), sessionEvent("ghost", time.Now(), domain.ProblemBattery))

	assert.Equal(t, 0, testutil.CollectAndCount(m.Duration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("complete")))
}

func TestCombine_CallsEveryHookInOrder(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnOpen: func(context.Context, *domain.SessionEvent) { calls = append(calls, "first") },
	}
	second := domain.LifecycleHooks{
		OnOpen:  func(context.Context, *domain.SessionEvent) { calls = append(calls, "second") },
		OnClose: func(context.Context, *domain.SessionEvent) { calls = append(calls, "close") },
	}

	h := observability.Combine(first, domain.LifecycleHooks{}, second)
	h.OnOpen(context.Background(), sessionEvent("a", time.Now(), ""))
	h.OnClose(context.Background(), sessionEvent("a", time.Now(), ""))

	assert.Equal(t, []string{"first", "second", "close"}, calls)
	assert.Nil(t, h.OnStep)
}

func TestLogging_WritesFallbackAtWarn(t *testing.T) {
	var buf bytes.Buffer
	h := observability.Logging(logging.NewWithWriter(&buf, slog.LevelDebug, false))

	h.OnFallback(context.Background(), &domain.FallbackEvent{
		EventBase: domain.EventBase{SessionID: "s-9"},
		Step:      domain.StepLocation,
		Reason:    "route_metrics",
		Err:       errors.New("no route"),
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "session_id=s-9")
	assert.Contains(t, out, "reason=route_metrics")
	assert.Contains(t, out, `err="no route"`)
}
