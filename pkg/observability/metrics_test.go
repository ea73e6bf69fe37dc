package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	ok := &domain.InvocationEvent{Operation: domain.OpExport3D, Duration: 200 * time.Millisecond}
	hooks.OnInvoke(ctx, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
	hooks.OnComplete(ctx, ok)

	failed := &domain.InvocationEvent{Operation: domain.OpImage, Err: errors.New("boom")}
	hooks.OnInvoke(ctx, failed)
	hooks.OnComplete(ctx, failed)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("export3d", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("image", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))

	hooks.OnTempFile(ctx, 1)
	hooks.OnTempFile(ctx, 1)
	hooks.OnTempFile(ctx, -1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TempFiles))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilRegisterer(t *testing.T) {
	m := observability.NewMetrics(nil)
	assert.NotPanics(t, func() { m.Hooks().OnTempFile(context.Background(), 1) })
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hooks := observability.LoggingHooks(logger)

	e := &domain.InvocationEvent{Operation: domain.OpDefinition, ModelFile: "cube.scad", Err: errors.New("exit status 1")}
	hooks.OnInvoke(context.Background(), e)
	hooks.OnComplete(context.Background(), e)

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool_invoke"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"model":"cube.scad"`)
	assert.Nil(t, hooks.OnTempFile)
}
