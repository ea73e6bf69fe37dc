package options_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

func TestOptions_DefaultFlags(t *testing.T) {
	opts := options.Default()
	require.NoError(t, opts.Validate())

	assert.Equal(t,
		"--backend Manifold --enable roof --enable lazy-union --enable vertex-object-renderers-indexing"+
			" --enable textmetrics --enable import-function --enable predictible-output",
		opts.Flags())
}

func TestOptions_Diagnostics(t *testing.T) {
	opts := options.Default()
	opts.Backend = options.BackendCGAL
	opts.Experimental = options.ExperimentalFeatures{}
	opts.Quiet = true
	opts.HardWarnings = true
	opts.CheckParameters = true
	opts.CheckParameterRanges = true
	opts.Debug = "all"
	opts.TrustPython = true
	opts.PythonModule = "numpy"

	assert.Equal(t,
		"--backend CGAL --quiet --hardwarnings --check-parameters --check-parameter-ranges --debug 'all' --trust-python --python-module 'numpy'",
		opts.Flags())
}

func TestOptions_QuotesAdversarialValues(t *testing.T) {
	opts := options.Default()
	opts.Experimental = options.ExperimentalFeatures{}
	opts.Debug = "x'; rm -rf /; echo '"

	assert.Equal(t, `--backend Manifold --debug 'x'\''; rm -rf /; echo '\'''`, opts.Flags())
}

func TestOptions_Idempotent(t *testing.T) {
	opts := options.Default()
	opts.Image.Camera = options.CameraEye{Eye: options.Vec3{X: 1}, Center: options.Vec3{Z: 2}}
	opts.Animation = opts.Animation.WithShard(2, 4)

	for i := 0; i < 5; i++ {
		assert.Equal(t, opts.Flags(), opts.Flags())
		assert.Equal(t, opts.Animation.Flags(), opts.Animation.Flags())
		assert.Equal(t, opts.ThreeMF.Flags(), opts.ThreeMF.Flags())
		assert.Equal(t, opts.PDF.Flags(), opts.PDF.Flags())
	}
}

func TestExperimentalFeatures_Flags(t *testing.T) {
	e := options.ExperimentalFeatures{Roof: true, LazyUnion: true, PythonEngine: false}

	flags := e.Flags()
	assert.Contains(t, flags, "--enable roof")
	assert.Contains(t, flags, "--enable lazy-union")
	assert.NotContains(t, flags, "python-engine")
	assert.Equal(t, "--enable roof --enable lazy-union", flags)
	assert.Empty(t, options.ExperimentalFeatures{}.Flags())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*options.Options)
	}{
		{"unknown backend", func(o *options.Options) { o.Backend = "OpenGL" }},
		{"empty executable", func(o *options.Options) { o.Executable = " " }},
		{"bad projection", func(o *options.Options) { o.Image.Projection = "x" }},
		{"bad view", func(o *options.Options) { o.Image.View = "top" }},
		{"bad size", func(o *options.Options) { o.Image.Size = &options.ImageSize{Width: 0, Height: 10} }},
		{"no frames", func(o *options.Options) { o.Animation.Frames = 0 }},
		{"shard out of range", func(o *options.Options) { o.Animation = o.Animation.WithShard(5, 4) }},
		{"bad unit", func(o *options.Options) { o.ThreeMF.Unit = "parsec" }},
		{"bad precision", func(o *options.Options) { o.ThreeMF.DecimalPrecision = 17 }},
		{"bad paper", func(o *options.Options) { o.PDF.PaperSize = "b5" }},
		{"negative svg stroke", func(o *options.Options) { o.SVG.StrokeWidth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Default()
			tt.mutate(&opts)
			assert.ErrorIs(t, opts.Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestImageOptions_Flags(t *testing.T) {
	img := options.ImageOptions{
		Size:        &options.ImageSize{Width: 256, Height: 512},
		Camera:      options.CameraPosition{Translate: options.Vec3{X: 1, Y: 2, Z: 3}, Rotate: options.Vec3{X: 55, Z: 25}, Dist: 140.5},
		Autocenter:  true,
		ViewAll:     true,
		View:        "axes",
		Projection:  "o",
		ColorScheme: "Daylight Gem",
		Render:      true,
		CSGLimit:    1000,
		Preview:     "throwntogether",
	}
	require.NoError(t, img.Validate())

	assert.Equal(t,
		"--export-format png --imgsize 256,512 --camera 1,2,3,55,0,25,140.5 --autocenter --viewall --view axes"+
			" --projection o --colorscheme 'Daylight Gem' --render --csglimit 1000 --preview throwntogether",
		img.Flags())

	assert.Equal(t, "--export-format png", options.ImageOptions{}.Flags())
}

func TestCamera_Shapes(t *testing.T) {
	eye := options.CameraEye{Eye: options.Vec3{X: 10, Y: -10, Z: 5}, Center: options.Vec3{}}
	assert.Equal(t, "10,-10,5,0,0,0", eye.Arg())

	c, err := options.ParseCamera(map[string]any{
		"translate": map[string]any{"x": 0, "y": 0, "z": 0},
		"rotate":    map[string]any{"x": 90, "y": 0, "z": 0},
		"dist":      "200",
	})
	require.NoError(t, err)
	assert.Equal(t, options.CameraPosition{Rotate: options.Vec3{X: 90}, Dist: 200}, c)

	c, err = options.ParseCamera(map[string]any{
		"eye":    map[string]any{"x": 1, "y": 2, "z": 3},
		"center": map[string]any{"x": 0, "y": 0, "z": 0},
	})
	require.NoError(t, err)
	assert.IsType(t, options.CameraEye{}, c)

	_, err = options.ParseCamera(map[string]any{"translate": map[string]any{"x": 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "rotate")

	_, err = options.ParseCamera(map[string]any{"eye": map[string]any{}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImageOptions_JSONCamera(t *testing.T) {
	var img options.ImageOptions
	err := json.Unmarshal([]byte(`{"imgsize":{"width":64,"height":64},"camera":{"eye":{"x":1,"y":1,"z":1},"center":{"x":0,"y":0,"z":0}},"view":"edges"}`), &img)
	require.NoError(t, err)
	assert.Equal(t, "edges", img.View)
	assert.Equal(t, options.CameraEye{Eye: options.Vec3{X: 1, Y: 1, Z: 1}}, img.Camera)

	err = json.Unmarshal([]byte(`{"camera":{"translate":{"x":1,"y":1,"z":1}}}`), &img)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCameraDecodeHook(t *testing.T) {
	var img options.ImageOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: options.CameraDecodeHook(),
		Result:     &img,
	})
	require.NoError(t, err)

	require.NoError(t, dec.Decode(map[string]any{
		"camera": map[string]any{
			"translate": map[string]any{"x": 1, "y": 2, "z": 3},
			"rotate":    map[string]any{"x": 0, "y": 0, "z": 0},
			"dist":      50,
		},
	}))
	assert.Equal(t, "1,2,3,0,0,0,50", img.Camera.Arg())
}

func TestAnimOptions_Flags(t *testing.T) {
	anim := options.DefaultAnimOptions()
	anim.Image.Size = &options.ImageSize{Width: 128, Height: 128}

	assert.Equal(t, "--export-format png --imgsize 128,128 --animate 50", anim.Flags())

	sharded := anim.WithShard(2, 5)
	assert.Equal(t, "--export-format png --imgsize 128,128 --animate 50 --animate-sharding 2/5", sharded.Flags())
	assert.Nil(t, anim.Sharding, "WithShard must not mutate the receiver")
	assert.True(t, strings.HasPrefix(sharded.Flags(), anim.Image.Flags()))
}

func TestThreeMF_EmitsEveryField(t *testing.T) {
	flags := options.DefaultThreeMF().Flags()

	assert.Equal(t, 12, strings.Count(flags, "-O "))
	assert.Contains(t, flags, "-O 'export-3mf/color-mode=model'")
	assert.Contains(t, flags, "-O 'export-3mf/unit=millimeter'")
	assert.Contains(t, flags, "-O 'export-3mf/color='")
	assert.Contains(t, flags, "-O 'export-3mf/decimal-precision=6'")
	assert.Contains(t, flags, "-O 'export-3mf/add-meta-data=true'")
	assert.True(t, strings.HasPrefix(flags, "-O 'export-3mf/color-mode=model' -O 'export-3mf/unit=millimeter'"))
	assert.True(t, strings.HasSuffix(flags, "-O 'export-3mf/meta-data-rating='"))
}

func TestThreeMF_EscapesQuotes(t *testing.T) {
	o := options.DefaultThreeMF()
	o.MetaDataTitle = "Bob's saber"

	assert.Contains(t, o.Flags(), `-O 'export-3mf/meta-data-title=Bob'\''s saber'`)
}

func TestExportFlags_ByFormat(t *testing.T) {
	opts := options.Default()

	assert.Equal(t, opts.ThreeMF.Flags(), opts.ExportFlags(domain.Format3MF))
	assert.Equal(t, opts.PDF.Flags(), opts.ExportFlags(domain.FormatPDF))
	assert.Equal(t, opts.SVG.Flags(), opts.ExportFlags(domain.FormatSVG))
	assert.Empty(t, opts.ExportFlags(domain.FormatSTL))
	assert.Empty(t, opts.ExportFlags(domain.FormatDXF))

	assert.Equal(t, 17, strings.Count(opts.PDF.Flags(), "-O 'export-pdf/"))
	assert.Contains(t, opts.PDF.Flags(), "-O 'export-pdf/stroke-width=0.35'")
	assert.Equal(t,
		"-O 'export-svg/fill=false' -O 'export-svg/fill-color=white' -O 'export-svg/stroke=true'"+
			" -O 'export-svg/stroke-color=black' -O 'export-svg/stroke-width=0.35'",
		opts.SVG.Flags())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, options.Quote("plain"))
	assert.Equal(t, `''`, options.Quote(""))
	assert.Equal(t, `'a'\''b'`, options.Quote("a'b"))
}

func TestArg(t *testing.T) {
	assert.Equal(t, "out/test3d_all_20.stl", options.Arg("out/test3d_all_20.stl"))
	assert.Equal(t, "a-b+c=d,e@f:g%h", options.Arg("a-b+c=d,e@f:g%h"))
	assert.Equal(t, `'my model.scad'`, options.Arg("my model.scad"))
	assert.Equal(t, `'$(rm -rf ~).scad'`, options.Arg("$(rm -rf ~).scad"))
	assert.Equal(t, `'it'\''s'`, options.Arg("it's"))
	assert.Equal(t, `''`, options.Arg(""))
}
