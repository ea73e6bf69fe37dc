package fakescad_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/internal/fakescad"
)

func TestSplit(t *testing.T) {
	words, err := fakescad.Split(`openscad --debug 'a b' -O 'export-3mf/title=Bob'\''s' -o out/x.stl  m.scad`)
	require.NoError(t, err)
	assert.Equal(t, []string{"openscad", "--debug", "a b", "-O", "export-3mf/title=Bob's", "-o", "out/x.stl", "m.scad"}, words)

	words, err = fakescad.Split(`x ''`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", ""}, words)

	_, err = fakescad.Split(`x 'open`)
	assert.Error(t, err)
}

func TestTool_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "m.stl")
	sum := filepath.Join(dir, "p.json.summaryabc.json")

	tool := fakescad.New()
	_, err := tool.Execute(context.Background(), "openscad --summary all --summary-file "+sum+" --export-format stl -o "+out+" m.scad")
	require.NoError(t, err)

	assert.FileExists(t, out)
	assert.FileExists(t, sum)

	call, ok := tool.LastCall()
	require.True(t, ok)
	assert.Equal(t, "m.scad", call.Model)
	assert.Equal(t, "stl", call.ExportFormat)
}

func TestTool_ShardedFrames(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "m_animImg.png")

	tool := fakescad.New()
	_, err := tool.Execute(context.Background(), "openscad --animate 5 --animate-sharding 2/2 -o "+out+" m.scad")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "m_animImg*.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "m_animImg00003.png"),
		filepath.Join(dir, "m_animImg00004.png"),
	}, matches)
}

func TestTool_Failure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "m.stl")

	tool := fakescad.New()
	tool.FailOutput = "ERROR: Parser error"
	text, err := tool.Execute(context.Background(), "openscad -o "+out+" m.scad")
	assert.ErrorIs(t, err, fakescad.ErrToolFailed)
	assert.Equal(t, "ERROR: Parser error", text)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
