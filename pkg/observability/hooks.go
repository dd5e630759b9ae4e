package observability

import (
	"context"
	"log/slog"

	"github.com/helpcar/quotechat/pkg/domain"
)

// Logging returns hooks that write each event to logger.
func Logging(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_open", "session_id", e.SessionID)
		},
		OnClose: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_close", "session_id", e.SessionID)
		},
		OnComplete: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_complete", "session_id", e.SessionID, "problem", e.Problem)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "session_id", e.SessionID, "step", e.Step, "branch", e.Branch)
		},
		OnAnswer: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "answer",
				"session_id", e.SessionID,
				"step", e.Step,
				"kind", e.Answer,
				"branch", e.Branch,
			)
		},
		OnFallback: func(ctx context.Context, e *domain.FallbackEvent) {
			logger.WarnContext(ctx, "fallback",
				"session_id", e.SessionID,
				"step", e.Step,
				"reason", e.Reason,
				"error", e.Err,
			)
		},
	}
}

// Combine fans each event out to every non-nil callback in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnOpen = chain(out.OnOpen, h.OnOpen)
		out.OnClose = chain(out.OnClose, h.OnClose)
		out.OnComplete = chain(out.OnComplete, h.OnComplete)
		out.OnStep = chain(out.OnStep, h.OnStep)
		out.OnAnswer = chain(out.OnAnswer, h.OnAnswer)
		out.OnFallback = chain(out.OnFallback, h.OnFallback)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
