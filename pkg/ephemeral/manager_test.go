package ephemeral_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ephemeral"
)

func TestToken(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := ephemeral.Token()
		require.Regexp(t, re, tok)
		require.False(t, seen[tok], "token collision")
		seen[tok] = true
	}
}

func TestOutputPath(t *testing.T) {
	m := ephemeral.New("out")

	assert.Equal(t, filepath.Join("out", "test3d_all_20.stl"), m.OutputPath("models/test3d.scad", "all_20", domain.FormatSTL, false))
	assert.Equal(t, filepath.Join("out", "test3d.stl"), m.OutputPath("test3d.scad", "", domain.FormatBinSTL, false))
	assert.Equal(t, filepath.Join("out", "test3d_model_animImg.png"), m.OutputPath("test3d.scad", "model", domain.FormatPNG, true))
	assert.Equal(t, filepath.Join("out", "test3d.param.json"), m.OutputPath("test3d.scad", "", domain.FormatParam, false))
	assert.Equal(t, filepath.Join("out", "test3d_model_animImg*.png"), m.FramePattern("test3d.scad", "model"))
	assert.Equal(t, filepath.Join("out", "test3d_model.webp"), m.AnimationPath("test3d.scad", "model"))
}

func TestOutputPath_ExtensionTable(t *testing.T) {
	m := ephemeral.New("out")
	for _, f := range domain.Formats() {
		got := m.OutputPath("cube.scad", "", f, false)
		assert.Equal(t, filepath.Join("out", "cube."+f.Extension()), got, "format %s", f)
	}
}

func TestMaterialize_FileInputIsNeverDeleted(t *testing.T) {
	dir := t.TempDir()
	owned := filepath.Join(dir, "test3d.json")
	require.NoError(t, os.WriteFile(owned, []byte(`{}`), 0o644))

	m := ephemeral.New(dir)
	pf, err := m.Materialize("test3d.scad", domain.FileInput(owned, "all_20"))
	require.NoError(t, err)
	assert.Equal(t, owned, pf.Path)
	assert.Equal(t, "all_20", pf.Group)
	assert.False(t, pf.Owned())

	require.NoError(t, pf.Release())
	assert.FileExists(t, owned)
}

func TestMaterialize_InMemoryInputs(t *testing.T) {
	set := domain.NewParameterSet()
	set.Add("big", []domain.ParameterKV{{Parameter: "size", Value: "50"}})

	tests := []struct {
		name   string
		input  domain.ParameterInput
		group  string
		values map[string]string
	}{
		{
			name:   "set",
			input:  domain.SetInput(set, "big"),
			group:  "big",
			values: map[string]string{"size": "50"},
		},
		{
			name:   "list",
			input:  domain.ListInput([]domain.ParameterKV{{Parameter: "size", Value: "5"}, {Parameter: "label", Value: "it's"}}),
			group:  "model",
			values: map[string]string{"size": "5", "label": "it's"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var created int
			m := ephemeral.New(dir, ephemeral.WithFileObserver(func(d int) { created += d }))

			pf, err := m.Materialize("models/test3d.scad", tt.input)
			require.NoError(t, err)
			assert.True(t, pf.Owned())
			assert.Equal(t, tt.group, pf.Group)
			assert.Regexp(t, `test3d_`+tt.group+`_[0-9a-f]{12}\.json$`, pf.Path)
			assert.Equal(t, 1, created)

			data, err := os.ReadFile(pf.Path)
			require.NoError(t, err)
			var got domain.ParameterSet
			require.NoError(t, json.Unmarshal(data, &got))
			group, ok := got.Group(tt.group)
			require.True(t, ok)
			assert.Equal(t, tt.values, group)

			require.NoError(t, pf.Release())
			assert.NoFileExists(t, pf.Path)
			assert.Equal(t, 0, created)

			// second release is a no-op
			require.NoError(t, pf.Release())
		})
	}
}

func TestRelease_MissingFileIsNotAnError(t *testing.T) {
	m := ephemeral.New(t.TempDir())
	pf, err := m.Materialize("a.scad", domain.ListInput(nil))
	require.NoError(t, err)

	require.NoError(t, os.Remove(pf.Path))
	assert.NoError(t, pf.Release())
}

func TestMaterialize_RejectsInvalidInput(t *testing.T) {
	m := ephemeral.New(t.TempDir())

	_, err := m.Materialize("a.scad", domain.ParameterInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.Materialize("a.scad", domain.SetInput(domain.NewParameterSet(), "missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMaterialize_ConcurrentCallsDoNotCollide(t *testing.T) {
	const n = 32
	m := ephemeral.New(t.TempDir())
	input := domain.ListInput([]domain.ParameterKV{{Parameter: "a", Value: "1"}})

	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pf, err := m.Materialize("same.scad", input)
			if assert.NoError(t, err) {
				paths[i] = pf.Path
			}
		}(i)
	}
	wg.Wait()

	unique := make(map[string]struct{}, n)
	for _, p := range paths {
		unique[p] = struct{}{}
	}
	assert.Len(t, unique, n)
}
