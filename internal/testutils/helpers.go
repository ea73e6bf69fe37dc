package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Workspace is a temporary model directory.
type Workspace struct {
	Dir       string
	Model     string
	ParamFile string
	OutputDir string
}

// TestModel is a minimal customizable model.
const TestModel = `// [Dimensions]
size = 20; // [1:100]
label = "cube";
center = true;
cube(size, center = center);
`

// SetupWorkspace writes test3d.scad and a test3d.json parameter file holding
// the groups "all_20" and "all_5" into a temp dir, and creates its out/ directory.
// It fails the test immediately on error.
func SetupWorkspace(t *testing.T) Workspace {
	t.Helper()

	dir := t.TempDir()
	ws := Workspace{
		Dir:       dir,
		Model:     filepath.Join(dir, "test3d.scad"),
		ParamFile: filepath.Join(dir, "test3d.json"),
		OutputDir: filepath.Join(dir, "out"),
	}
	require.NoError(t, os.WriteFile(ws.Model, []byte(TestModel), 0o644), "Failed to write model")
	require.NoError(t, os.MkdirAll(ws.OutputDir, 0o755), "Failed to create output dir")

	set := domain.NewParameterSet()
	set.Add("all_20", []domain.ParameterKV{{Parameter: "size", Value: "20"}})
	set.Add("all_5", []domain.ParameterKV{{Parameter: "size", Value: "5"}})
	data, err := json.Marshal(set)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.ParamFile, data, 0o644), "Failed to write parameter file")

	return ws
}

// TestDefinition is the parameter definition matching TestModel.
func TestDefinition() *domain.ParameterDefinition {
	min, max := 1.0, 100.0
	return &domain.ParameterDefinition{
		Title: "test3d",
		Parameters: []domain.Parameter{
			{Name: "size", Type: domain.TypeNumber, Group: "Dimensions", Initial: 20.0, Min: &min, Max: &max},
			{Name: "label", Type: domain.TypeString, Group: "Parameters", Initial: "cube"},
			{Name: "center", Type: domain.TypeBoolean, Group: "Parameters", Initial: true},
		},
	}
}
