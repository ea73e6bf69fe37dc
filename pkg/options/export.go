package options

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// exportOption is one `-O 'export-<format>/<key>=<value>'` token.
type exportOption struct {
	key   string
	value string
}

func exportFlags(format string, opts []exportOption) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, "-O "+Quote("export-"+format+"/"+kebab(o.key)+"="+o.value))
	}
	return strings.Join(parts, " ")
}

// ThreeMFOptions configures 3MF export. Every field is always emitted.
type ThreeMFOptions struct {
	ColorMode            string `json:"color_mode" yaml:"color_mode" mapstructure:"color_mode"`
	Unit                 string `json:"unit" yaml:"unit" mapstructure:"unit"`
	Color                string `json:"color" yaml:"color" mapstructure:"color"`
	MaterialType         string `json:"material_type" yaml:"material_type" mapstructure:"material_type"`
	DecimalPrecision     int    `json:"decimal_precision" yaml:"decimal_precision" mapstructure:"decimal_precision"`
	AddMetaData          bool   `json:"add_meta_data" yaml:"add_meta_data" mapstructure:"add_meta_data"`
	MetaDataTitle        string `json:"meta_data_title" yaml:"meta_data_title" mapstructure:"meta_data_title"`
	MetaDataDesigner     string `json:"meta_data_designer" yaml:"meta_data_designer" mapstructure:"meta_data_designer"`
	MetaDataDescription  string `json:"meta_data_description" yaml:"meta_data_description" mapstructure:"meta_data_description"`
	MetaDataCopyright    string `json:"meta_data_copyright" yaml:"meta_data_copyright" mapstructure:"meta_data_copyright"`
	MetaDataLicenseTerms string `json:"meta_data_license_terms" yaml:"meta_data_license_terms" mapstructure:"meta_data_license_terms"`
	MetaDataRating       string `json:"meta_data_rating" yaml:"meta_data_rating" mapstructure:"meta_data_rating"`
}

func DefaultThreeMF() ThreeMFOptions {
	return ThreeMFOptions{
		ColorMode:        "model",
		Unit:             "millimeter",
		MaterialType:     "basematerial",
		DecimalPrecision: 6,
		AddMetaData:      true,
	}
}

var (
	colorModes    = []string{"model", "none", "selected_only"}
	units         = []string{"micron", "millimeter", "centimeter", "meter", "inch", "foot"}
	materialTypes = []string{"color", "basematerial"}
)

func (o ThreeMFOptions) Flags() string {
	return exportFlags("3mf", []exportOption{
		{"color_mode", o.ColorMode},
		{"unit", o.Unit},
		{"color", o.Color},
		{"material_type", o.MaterialType},
		{"decimal_precision", strconv.Itoa(o.DecimalPrecision)},
		{"add_meta_data", strconv.FormatBool(o.AddMetaData)},
		{"meta_data_title", o.MetaDataTitle},
		{"meta_data_designer", o.MetaDataDesigner},
		{"meta_data_description", o.MetaDataDescription},
		{"meta_data_copyright", o.MetaDataCopyright},
		{"meta_data_license_terms", o.MetaDataLicenseTerms},
		{"meta_data_rating", o.MetaDataRating},
	})
}

func (o ThreeMFOptions) Validate() error {
	if !slices.Contains(colorModes, o.ColorMode) {
		return fmt.Errorf("%w: unknown color mode %q", domain.ErrInvalidInput, o.ColorMode)
	}
	if !slices.Contains(units, o.Unit) {
		return fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidInput, o.Unit)
	}
	if !slices.Contains(materialTypes, o.MaterialType) {
		return fmt.Errorf("%w: unknown material type %q", domain.ErrInvalidInput, o.MaterialType)
	}
	if o.DecimalPrecision < 1 || o.DecimalPrecision > 16 {
		return fmt.Errorf("%w: decimal precision must be within 1..16, got %d", domain.ErrInvalidInput, o.DecimalPrecision)
	}
	return nil
}

// PDFOptions configures PDF export. Every field is always emitted.
type PDFOptions struct {
	PaperSize        string  `json:"paper_size" yaml:"paper_size" mapstructure:"paper_size"`
	Orientation      string  `json:"orientation" yaml:"orientation" mapstructure:"orientation"`
	ShowFilename     bool    `json:"show_filename" yaml:"show_filename" mapstructure:"show_filename"`
	ShowScale        bool    `json:"show_scale" yaml:"show_scale" mapstructure:"show_scale"`
	ShowScaleMessage bool    `json:"show_scale_message" yaml:"show_scale_message" mapstructure:"show_scale_message"`
	ShowGrid         bool    `json:"show_grid" yaml:"show_grid" mapstructure:"show_grid"`
	GridSize         float64 `json:"grid_size" yaml:"grid_size" mapstructure:"grid_size"`
	AddMetaData      bool    `json:"add_meta_data" yaml:"add_meta_data" mapstructure:"add_meta_data"`
	MetaDataTitle    string  `json:"meta_data_title" yaml:"meta_data_title" mapstructure:"meta_data_title"`
	MetaDataAuthor   string  `json:"meta_data_author" yaml:"meta_data_author" mapstructure:"meta_data_author"`
	MetaDataSubject  string  `json:"meta_data_subject" yaml:"meta_data_subject" mapstructure:"meta_data_subject"`
	MetaDataKeywords string  `json:"meta_data_keywords" yaml:"meta_data_keywords" mapstructure:"meta_data_keywords"`
	Fill             bool    `json:"fill" yaml:"fill" mapstructure:"fill"`
	FillColor        string  `json:"fill_color" yaml:"fill_color" mapstructure:"fill_color"`
	Stroke           bool    `json:"stroke" yaml:"stroke" mapstructure:"stroke"`
	StrokeColor      string  `json:"stroke_color" yaml:"stroke_color" mapstructure:"stroke_color"`
	StrokeWidth      float64 `json:"stroke_width" yaml:"stroke_width" mapstructure:"stroke_width"`
}

func DefaultPDF() PDFOptions {
	return PDFOptions{
		PaperSize:        "a4",
		Orientation:      "portrait",
		ShowScale:        true,
		ShowScaleMessage: true,
		GridSize:         10,
		AddMetaData:      true,
		FillColor:        "black",
		Stroke:           true,
		StrokeColor:      "black",
		StrokeWidth:      0.35,
	}
}

var (
	paperSizes   = []string{"a6", "a5", "a4", "a3", "letter", "legal", "tabloid"}
	orientations = []string{"portrait", "landscape", "auto"}
)

func (o PDFOptions) Flags() string {
	return exportFlags("pdf", []exportOption{
		{"paper_size", o.PaperSize},
		{"orientation", o.Orientation},
		{"show_filename", strconv.FormatBool(o.ShowFilename)},
		{"show_scale", strconv.FormatBool(o.ShowScale)},
		{"show_scale_message", strconv.FormatBool(o.ShowScaleMessage)},
		{"show_grid", strconv.FormatBool(o.ShowGrid)},
		{"grid_size", formatFloat(o.GridSize)},
		{"add_meta_data", strconv.FormatBool(o.AddMetaData)},
		{"meta_data_title", o.MetaDataTitle},
		{"meta_data_author", o.MetaDataAuthor},
		{"meta_data_subject", o.MetaDataSubject},
		{"meta_data_keywords", o.MetaDataKeywords},
		{"fill", strconv.FormatBool(o.Fill)},
		{"fill_color", o.FillColor},
		{"stroke", strconv.FormatBool(o.Stroke)},
		{"stroke_color", o.StrokeColor},
		{"stroke_width", formatFloat(o.StrokeWidth)},
	})
}

func (o PDFOptions) Validate() error {
	if !slices.Contains(paperSizes, o.PaperSize) {
		return fmt.Errorf("%w: unknown paper size %q", domain.ErrInvalidInput, o.PaperSize)
	}
	if !slices.Contains(orientations, o.Orientation) {
		return fmt.Errorf("%w: unknown orientation %q", domain.ErrInvalidInput, o.Orientation)
	}
	if o.GridSize <= 0 {
		return fmt.Errorf("%w: grid size must be positive", domain.ErrInvalidInput)
	}
	if o.StrokeWidth < 0 {
		return fmt.Errorf("%w: stroke width must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// SVGOptions configures SVG export. Every field is always emitted.
type SVGOptions struct {
	Fill        bool    `json:"fill" yaml:"fill" mapstructure:"fill"`
	FillColor   string  `json:"fill_color" yaml:"fill_color" mapstructure:"fill_color"`
	Stroke      bool    `json:"stroke" yaml:"stroke" mapstructure:"stroke"`
	StrokeColor string  `json:"stroke_color" yaml:"stroke_color" mapstructure:"stroke_color"`
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width" mapstructure:"stroke_width"`
}

func DefaultSVG() SVGOptions {
	return SVGOptions{
		FillColor:   "white",
		Stroke:      true,
		StrokeColor: "black",
		StrokeWidth: 0.35,
	}
}

func (o SVGOptions) Flags() string {
	return exportFlags("svg", []exportOption{
		{"fill", strconv.FormatBool(o.Fill)},
		{"fill_color", o.FillColor},
		{"stroke", strconv.FormatBool(o.Stroke)},
		{"stroke_color", o.StrokeColor},
		{"stroke_width", formatFloat(o.StrokeWidth)},
	})
}

func (o SVGOptions) Validate() error {
	if o.StrokeWidth < 0 {
		return fmt.Errorf("%w: stroke width must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
