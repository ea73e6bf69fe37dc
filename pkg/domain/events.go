package domain

import (
	"context"
	"time"
)

// InvocationEvent describes one call to the external tool.
type InvocationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Operation Operation     `json:"operation"`
	ModelFile string        `json:"model_file"`
	Command   string        `json:"command"`
	Duration  time.Duration `json:"duration,omitempty"` // set on completion
	Err       error         `json:"-"`                  // set on completion
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnInvoke   func(context.Context, *InvocationEvent)
	OnComplete func(context.Context, *InvocationEvent)
	// OnTempFile is called with +1 when an ephemeral file is created and -1 when it is released.
	OnTempFile func(ctx context.Context, delta int)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnInvoke:   chainEvent(h.OnInvoke, other.OnInvoke),
		OnComplete: chainEvent(h.OnComplete, other.OnComplete),
		OnTempFile: chainDelta(h.OnTempFile, other.OnTempFile),
	}
}

func chainEvent(a, b func(context.Context, *InvocationEvent)) func(context.Context, *InvocationEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *InvocationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainDelta(a, b func(context.Context, int)) func(context.Context, int) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, d int) {
		a(ctx, d)
		b(ctx, d)
	}
}
