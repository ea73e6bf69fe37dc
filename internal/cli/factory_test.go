package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickbattail/scadwrap/internal/config"
	"github.com/yannickbattail/scadwrap/internal/fakescad"
	"github.com/yannickbattail/scadwrap/internal/logging"
	"github.com/yannickbattail/scadwrap/internal/testutils"
	"github.com/yannickbattail/scadwrap/pkg/adapters/file"
	"github.com/yannickbattail/scadwrap/pkg/adapters/memory"
	"github.com/yannickbattail/scadwrap/pkg/adapters/redis"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

func newConfig(t *testing.T) (*config.Config, testutils.Workspace) {
	t.Helper()
	ws := testutils.SetupWorkspace(t)
	cfg := config.Default()
	cfg.OpenSCAD.OutputDir = ws.OutputDir
	return &cfg, ws
}

func TestNewRuntime_Stores(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg, _ := newConfig(t)
		rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(fakescad.New()))
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, rt.Store)
		assert.Nil(t, rt.Locker)
		assert.Nil(t, rt.Streams)
		assert.NoError(t, rt.Close())
	})

	t.Run("File", func(t *testing.T) {
		cfg, _ := newConfig(t)
		cfg.Store.Driver = config.StoreFile
		cfg.Store.Dir = t.TempDir()
		rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(fakescad.New()))
		require.NoError(t, err)
		assert.IsType(t, &file.Store{}, rt.Store)
	})

	t.Run("Redis with lock", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg, _ := newConfig(t)
		cfg.Store.Driver = config.StoreRedis
		cfg.Store.Redis.Addr = mr.Addr()
		cfg.Lock.Enabled = true

		rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(fakescad.New()), WithStreams())
		require.NoError(t, err)
		defer rt.Close()

		assert.IsType(t, &redis.Store{}, rt.Store)
		assert.IsType(t, &redis.Locker{}, rt.Locker)
		assert.NotNil(t, rt.Streams)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		cfg, _ := newConfig(t)
		cfg.Store.Driver = "s3"
		_, err := NewRuntime(cfg, logging.NewNop())
		assert.Error(t, err)
	})
}

func TestRuntime_Client(t *testing.T) {
	cfg, ws := newConfig(t)
	tool := fakescad.New()
	tool.Definition = testutils.TestDefinition()

	rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(tool))
	require.NoError(t, err)

	c1, err := rt.Client(ws.Model)
	require.NoError(t, err)
	c2, err := rt.Client(ws.Model)
	require.NoError(t, err)
	assert.Same(t, c1, c2, "Clients are cached per model")

	res, err := c1.Export3D(context.Background(), domain.FileInput(ws.ParamFile, "all_20"), domain.FormatSTL)
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)

	rec, err := rt.Store.Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OpExport3D, rec.Operation)

	assert.Equal(t, 1.0, testutil.ToFloat64(rt.Metrics.Invocations.WithLabelValues(string(domain.OpExport3D), "success")))
}

func TestRuntime_SecureStore(t *testing.T) {
	cfg, ws := newConfig(t)
	cfg.Store.Redact = []string{regexp.QuoteMeta(ws.OutputDir)}
	cfg.Store.EncryptionKeys = []string{base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))}
	tool := fakescad.New()

	rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(tool))
	require.NoError(t, err)
	c, err := rt.Client(ws.Model)
	require.NoError(t, err)

	res, err := c.Export3D(context.Background(), domain.ListInput(nil), domain.FormatSTL)
	require.NoError(t, err)

	rec, err := rt.Store.Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Contains(t, rec.Output, "Saved ***")
	assert.NotContains(t, rec.Output, ws.OutputDir)
	assert.Equal(t, res.File, rec.File, "Fields other than output are kept")

	t.Run("Bad key", func(t *testing.T) {
		cfg, _ := newConfig(t)
		cfg.Store.EncryptionKeys = []string{"c2hvcnQ="}
		_, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(fakescad.New()))
		assert.Error(t, err)
	})
}

func TestRuntime_StrictParameters(t *testing.T) {
	cfg, ws := newConfig(t)
	cfg.Strict = true
	tool := fakescad.New()
	tool.Definition = testutils.TestDefinition()

	rt, err := NewRuntime(cfg, logging.NewNop(), WithExecutor(tool))
	require.NoError(t, err)
	c, err := rt.Client(ws.Model)
	require.NoError(t, err)

	_, err = c.Export3D(context.Background(),
		domain.ListInput([]domain.ParameterKV{{Parameter: "size", Value: "500"}}), domain.FormatSTL)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
