package options

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// ImageSize is the raster size in pixels.
type ImageSize struct {
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`
}

// ColorSchemes lists the schemes the tool ships with.
var ColorSchemes = []string{
	"Cornfield", "Metallic", "Sunset", "Starnight", "BeforeDawn", "Nature",
	"Daylight Gem", "Nocturnal Gem", "DeepOcean", "Solarized", "Tomorrow",
	"Tomorrow Night", "ClearSky", "Monotone",
}

var (
	views       = []string{"axes", "crosshairs", "edges", "scales"}
	projections = []string{"o", "p"}
)

// ImageOptions configures still image rendering.
// Zero values are omitted from the command line.
type ImageOptions struct {
	Size        *ImageSize `json:"imgsize,omitempty" yaml:"imgsize,omitempty" mapstructure:"imgsize"`
	Camera      Camera     `json:"camera,omitempty" yaml:"camera,omitempty" mapstructure:"camera"`
	Autocenter  bool       `json:"autocenter" yaml:"autocenter" mapstructure:"autocenter"`
	ViewAll     bool       `json:"viewall" yaml:"viewall" mapstructure:"viewall"`
	View        string     `json:"view,omitempty" yaml:"view,omitempty" mapstructure:"view"`
	Projection  string     `json:"projection,omitempty" yaml:"projection,omitempty" mapstructure:"projection"`
	ColorScheme string     `json:"colorscheme,omitempty" yaml:"colorscheme,omitempty" mapstructure:"colorscheme"`
	Render      bool       `json:"render" yaml:"render" mapstructure:"render"`
	CSGLimit    int        `json:"csglimit,omitempty" yaml:"csglimit,omitempty" mapstructure:"csglimit"`
	Preview     string     `json:"preview,omitempty" yaml:"preview,omitempty" mapstructure:"preview"`
}

// Flags renders the raster flags, starting with `--export-format png`.
func (o ImageOptions) Flags() string {
	var b flagBuilder
	b.add("--export-format", string(domain.FormatPNG))
	if o.Size != nil {
		b.add("--imgsize", strconv.Itoa(o.Size.Width)+","+strconv.Itoa(o.Size.Height))
	}
	if o.Camera != nil {
		b.add("--camera", o.Camera.Arg())
	}
	b.toggle(o.Autocenter, "--autocenter")
	b.toggle(o.ViewAll, "--viewall")
	if o.View != "" {
		b.add("--view", o.View)
	}
	if o.Projection != "" {
		b.add("--projection", o.Projection)
	}
	b.quoted("--colorscheme", o.ColorScheme)
	b.toggle(o.Render, "--render")
	if o.CSGLimit > 0 {
		b.add("--csglimit", strconv.Itoa(o.CSGLimit))
	}
	if o.Preview != "" {
		b.add("--preview", o.Preview)
	}
	return b.String()
}

// Validate checks enumerated values and sizes.
func (o ImageOptions) Validate() error {
	if o.Size != nil && (o.Size.Width <= 0 || o.Size.Height <= 0) {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", domain.ErrInvalidInput, o.Size.Width, o.Size.Height)
	}
	if o.View != "" && !slices.Contains(views, o.View) {
		return fmt.Errorf("%w: unknown view %q", domain.ErrInvalidInput, o.View)
	}
	if o.Projection != "" && !slices.Contains(projections, o.Projection) {
		return fmt.Errorf("%w: unknown projection %q", domain.ErrInvalidInput, o.Projection)
	}
	if o.ColorScheme != "" && !slices.Contains(ColorSchemes, o.ColorScheme) {
		return fmt.Errorf("%w: unknown color scheme %q", domain.ErrInvalidInput, o.ColorScheme)
	}
	if o.CSGLimit < 0 {
		return fmt.Errorf("%w: csglimit must not be negative", domain.ErrInvalidInput)
	}
	if o.Preview != "" && o.Preview != "throwntogether" {
		return fmt.Errorf("%w: unknown preview mode %q", domain.ErrInvalidInput, o.Preview)
	}
	if c, ok := o.Camera.(CameraPosition); ok && c.Dist < 0 {
		return fmt.Errorf("%w: camera distance must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

type imageAlias ImageOptions

// UnmarshalJSON resolves the camera shape through ParseCamera.
func (o *ImageOptions) UnmarshalJSON(data []byte) error {
	aux := struct {
		*imageAlias
		Camera json.RawMessage `json:"camera"`
	}{imageAlias: (*imageAlias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	cam, err := cameraJSON(aux.Camera)
	if err != nil {
		return err
	}
	o.Camera = cam
	return nil
}
