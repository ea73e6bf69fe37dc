package observability

import (
	"context"
	"log/slog"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// LoggingHooks logs the start and end of every invocation.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvoke: func(ctx context.Context, e *domain.InvocationEvent) {
			logger.InfoContext(ctx, "tool_invoke",
				"operation", e.Operation,
				"model", e.ModelFile,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.InvocationEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "tool_complete",
					"operation", e.Operation,
					"model", e.ModelFile,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "tool_complete",
				"operation", e.Operation,
				"model", e.ModelFile,
				"duration", e.Duration,
			)
		},
	}
}
