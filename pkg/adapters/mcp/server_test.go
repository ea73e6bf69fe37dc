package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickbattail/scadwrap"
	"github.com/yannickbattail/scadwrap/internal/fakescad"
	"github.com/yannickbattail/scadwrap/internal/testutils"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

func newTestServer(t *testing.T) (*Server, *fakescad.Tool, testutils.Workspace) {
	t.Helper()
	ws := testutils.SetupWorkspace(t)
	tool := fakescad.New()
	tool.Definition = testutils.TestDefinition()

	opts := options.Default()
	opts.OutputDir = ws.OutputDir

	s := NewServer(func(model string) (Client, error) {
		return scadwrap.New(filepath.Join(ws.Dir, model), opts, tool)
	}, opts, nil, WithModelsDir(ws.Dir))
	return s, tool, ws
}

func TestHandleDefinition(t *testing.T) {
	s, _, ws := newTestServer(t)

	res, err := s.handleDefinition(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"model": "test3d.scad",
	})
	require.NoError(t, err)
	require.NotNil(t, res.ParameterDefinition)
	assert.Equal(t, filepath.Join(ws.OutputDir, "test3d.param.json"), res.File)

	p, ok := res.ParameterDefinition.Lookup("size")
	require.True(t, ok)
	assert.Equal(t, domain.TypeNumber, p.Type)
}

func TestHandleExport(t *testing.T) {
	s, tool, ws := newTestServer(t)

	res, err := s.handleExport(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"model":      "test3d.scad",
		"format":     "3MF",
		"parameters": `[{"parameter":"size","value":"7"}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.OutputDir, "test3d_model.3mf"), res.File)
	require.NotNil(t, res.Summary)

	call, _ := tool.LastCall()
	assert.Equal(t, "3mf", call.ExportFormat)
	assert.JSONEq(t, `{"fileFormatVersion":"1","parameterSets":{"model":{"size":"7"}}}`, string(call.ParamContent))
}

func TestHandleExport_FileParameters(t *testing.T) {
	s, tool, ws := newTestServer(t)

	_, err := s.handleExport(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"model":      "test3d.scad",
		"format":     "stl",
		"parameters": `{"parameterFile":"test3d.json","parameterName":"all_5"}`,
	})
	require.NoError(t, err)
	call, _ := tool.LastCall()
	assert.Equal(t, "all_5", call.Group)
	assert.Equal(t, ws.ParamFile, call.ParamFile)
}

func TestHandleExport_ParametersStayInsideRoots(t *testing.T) {
	s, tool, ws := newTestServer(t)

	tests := []struct {
		name       string
		parameters string
	}{
		{"absolute file", `{"parameterFile":"` + filepath.ToSlash(ws.ParamFile) + `","parameterName":"all_5"}`},
		{"escaping file", `{"parameterFile":"../test3d.json","parameterName":"all_5"}`},
		{"escaping group", `{"parameterSet":{"fileFormatVersion":"1","parameterSets":{"x/../../y":{"size":"5"}}},"parameterName":"x/../../y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleExport(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
				"model":      "test3d.scad",
				"format":     "stl",
				"parameters": tt.parameters,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, tool.Calls())
}

func TestHandleExport_Errors(t *testing.T) {
	s, tool, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		want error
	}{
		{"missing model", map[string]interface{}{"format": "stl"}, domain.ErrInvalidInput},
		{"unknown format", map[string]interface{}{"model": "test3d.scad", "format": "gltf"}, domain.ErrUnsupportedFormat},
		{"internal format", map[string]interface{}{"model": "test3d.scad", "format": "param"}, domain.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleExport(ctx, mcp.CallToolRequest{}, tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := s.handleExport(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"model":      "test3d.scad",
		"format":     "stl",
		"parameters": `{"parameterFile":`,
	})
	assert.Error(t, err)
	assert.Empty(t, tool.Calls(), "Invalid requests must not reach the tool")
}

func TestHandleImage(t *testing.T) {
	s, tool, ws := newTestServer(t)

	res, err := s.handleImage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"model": "test3d.scad",
		"image": `{"imgsize":{"width":320,"height":200},"viewall":true}`,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.OutputDir, "test3d_model.png"), res.File)

	call, _ := tool.LastCall()
	cmd := call.Command
	assert.Contains(t, cmd, "--imgsize 320,200")
	assert.Contains(t, cmd, "--viewall")
}

func TestHandleAnimation(t *testing.T) {
	s, tool, _ := newTestServer(t)

	res, err := s.handleAnimation(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"model":  "test3d.scad",
		"frames": float64(4),
	})
	require.NoError(t, err)
	assert.Contains(t, res.File, "*")
	call, _ := tool.LastCall()
	assert.Equal(t, 4, call.Animate)
}

func TestHandleFormats(t *testing.T) {
	s, _, _ := newTestServer(t)

	list, err := s.handleFormats(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)

	names := make(map[domain.ExportFormat]FormatInfo)
	for _, f := range list.Formats {
		names[f.Name] = f
	}
	assert.Contains(t, names, domain.FormatSTL)
	assert.Contains(t, names, domain.FormatSVG)
	assert.NotContains(t, names, domain.FormatParam)
	assert.NotContains(t, names, domain.FormatEcho)
	assert.Equal(t, "stl", names[domain.FormatASCIISTL].Extension)
}
