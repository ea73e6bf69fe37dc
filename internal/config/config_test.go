package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yannickbattail/scadwrap/internal/config"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scadwrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
openscad:
  executable: xvfb-run openscad-nightly
  output_dir: build
  hardwarnings: true
  experimental:
    roof: false
  image:
    imgsize: {width: 640, height: 480}
    camera:
      translate: {x: 0, y: 0, z: 0}
      rotate: {x: 55, y: 0, z: 25}
      dist: 140
  animation:
    frames: 12
log:
  level: debug
store:
  driver: file
  dir: /tmp/results
lock:
  ttl: 30s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	o := cfg.OpenSCAD
	assert.Equal(t, "xvfb-run openscad-nightly", o.Executable)
	assert.Equal(t, "build", o.OutputDir)
	assert.True(t, o.HardWarnings)
	assert.False(t, o.Experimental.Roof)
	assert.Equal(t, options.BackendManifold, o.Backend, "Unset keys keep their default")
	require.NotNil(t, o.Image.Size)
	assert.Equal(t, 640, o.Image.Size.Width)
	assert.IsType(t, options.CameraPosition{}, o.Image.Camera)
	assert.Equal(t, 12, o.Animation.Frames)
	assert.Equal(t, 100, o.Animation.DelayMs)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.StoreFile, cfg.Store.Driver)
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "openscad:\n  executable: openscad\n")
	t.Setenv("SCADWRAP_OPENSCAD_EXECUTABLE", "openscad-nightly")
	t.Setenv("SCADWRAP_SERVER_PORT", "9090")
	t.Setenv("SCADWRAP_STRICT", "true")
	t.Setenv("SCADWRAP_STORE_REDACT", `/home/[^/]+,token=\S+`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openscad-nightly", cfg.OpenSCAD.Executable)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{`/home/[^/]+`, `token=\S+`}, cfg.Store.Redact)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "openscad:\n  backend: Voxel\n"},
		{"incomplete camera", "openscad:\n  image:\n    camera:\n      translate: {x: 0, y: 0, z: 0}\n"},
		{"unknown store", "store:\n  driver: s3\n"},
		{"lock without redis", "lock:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "An explicit path must exist")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, config.LoadDotEnv(filepath.Join(dir, ".env")), "Missing .env is ignored")

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCADWRAP_LOG_LEVEL=warn\n"), 0o644))
	t.Setenv("SCADWRAP_LOG_LEVEL", "")
	os.Unsetenv("SCADWRAP_LOG_LEVEL")

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "warn", os.Getenv("SCADWRAP_LOG_LEVEL"))
}

func TestYAML_RoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Store.TTL = time.Hour
	cfg.Store.EncryptionKeys = []string{"c2VjcmV0"}

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "executable: openscad")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Contains(t, back, "openscad")
	assert.Contains(t, back, "store")
	assert.NotContains(t, string(data), "c2VjcmV0", "Keys are never printed")
}
