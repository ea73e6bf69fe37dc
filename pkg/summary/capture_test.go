package summary_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/summary"
)

const sampleSummary = `{
  "cache": {
    "cgal_cache": {"bytes": 0, "entries": 0, "max_size": 104857600},
    "geometry_cache": {"bytes": 2304, "entries": 3, "max_size": 104857600}
  },
  "camera": {"distance": 140.0, "fov": 22.5, "rotation": [55, 0, 25], "translation": [0, 0, 0]},
  "geometry": {
    "bounding_box": {"max": [10, 10, 10], "min": [-10, -10, -10], "size": [20, 20, 20]},
    "dimensions": 3,
    "facets": 6,
    "simple": true,
    "vertices": 8
  },
  "time": {"hours": 0, "milliseconds": 42, "minutes": 0, "seconds": 0, "time": "0:00:00.042", "total": 0.042}
}`

func TestAllocate(t *testing.T) {
	a := summary.Allocate("test3d.json")
	b := summary.Allocate("test3d.json")

	assert.Regexp(t, `^test3d\.json\.summary[0-9a-f]{12}\.json$`, a.Path())
	assert.NotEqual(t, a.Path(), b.Path())
	assert.Equal(t, "--summary all --summary-file "+a.Path(), a.Flags())
}

func TestCollect(t *testing.T) {
	c := summary.Allocate(filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, os.WriteFile(c.Path(), []byte(sampleSummary), 0o644))

	s, err := c.Collect()
	require.NoError(t, err)
	assert.Equal(t, int64(2304), s.Cache.GeometryCache.Bytes)
	assert.Equal(t, domain.Vec3{55, 0, 25}, s.Camera.Rotation)
	assert.Equal(t, 3, s.Geometry.Dimensions)
	assert.Equal(t, domain.Vec3{20, 20, 20}, s.Geometry.BoundingBox.Size)
	assert.True(t, s.Geometry.Simple)
	assert.Equal(t, "0:00:00.042", s.Time.Time)
	assert.NoFileExists(t, c.Path(), "summary must be deleted after collection")
}

func TestCollect_Missing(t *testing.T) {
	c := summary.Allocate(filepath.Join(t.TempDir(), "p.json"))

	s, err := c.Collect()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, domain.ErrMissingOutput)
	assert.True(t, strings.Contains(err.Error(), c.Path()), "error must name %s: %v", c.Path(), err)
}

func TestCollect_Malformed(t *testing.T) {
	c := summary.Allocate(filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, os.WriteFile(c.Path(), []byte(`{"cache":`), 0o644))

	_, err := c.Collect()
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
	assert.NoFileExists(t, c.Path())
}

func TestDiscard(t *testing.T) {
	c := summary.Allocate(filepath.Join(t.TempDir(), "p.json"))
	assert.NoError(t, c.Discard())

	require.NoError(t, os.WriteFile(c.Path(), []byte(`{}`), 0o644))
	assert.NoError(t, c.Discard())
	assert.NoFileExists(t, c.Path())
}
