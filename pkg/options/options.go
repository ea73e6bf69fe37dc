package options

import (
	"fmt"
	"strings"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Backend selects the 3D rendering engine of the tool.
type Backend string

const (
	BackendCGAL     Backend = "CGAL"
	BackendManifold Backend = "Manifold"
)

// Options is the full invocation configuration.
// It is a plain value: copy it to derive a variant, never share a pointer between calls.
type Options struct {
	// Executable is the command used to start the tool, e.g. "openscad" or "xvfb-run openscad-nightly".
	Executable string `json:"executable" yaml:"executable" mapstructure:"executable"`
	// OutputDir receives every generated and temporary file.
	OutputDir string  `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
	Backend   Backend `json:"backend" yaml:"backend" mapstructure:"backend"`

	Experimental ExperimentalFeatures `json:"experimental" yaml:"experimental" mapstructure:"experimental"`

	Quiet                bool   `json:"quiet" yaml:"quiet" mapstructure:"quiet"`
	HardWarnings         bool   `json:"hardwarnings" yaml:"hardwarnings" mapstructure:"hardwarnings"`
	CheckParameters      bool   `json:"check_parameters" yaml:"check_parameters" mapstructure:"check_parameters"`
	CheckParameterRanges bool   `json:"check_parameter_ranges" yaml:"check_parameter_ranges" mapstructure:"check_parameter_ranges"`
	Debug                string `json:"debug,omitempty" yaml:"debug" mapstructure:"debug"`
	TrustPython          bool   `json:"trust_python" yaml:"trust_python" mapstructure:"trust_python"`
	PythonModule         string `json:"python_module,omitempty" yaml:"python_module" mapstructure:"python_module"`

	Image     ImageOptions   `json:"image" yaml:"image" mapstructure:"image"`
	Animation AnimOptions    `json:"animation" yaml:"animation" mapstructure:"animation"`
	ThreeMF   ThreeMFOptions `json:"3mf" yaml:"3mf" mapstructure:"3mf"`
	PDF       PDFOptions     `json:"pdf" yaml:"pdf" mapstructure:"pdf"`
	SVG       SVGOptions     `json:"svg" yaml:"svg" mapstructure:"svg"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Options {
	return Options{
		Executable:   "openscad",
		OutputDir:    "./",
		Backend:      BackendManifold,
		Experimental: DefaultExperimentalFeatures(),
		Animation:    DefaultAnimOptions(),
		ThreeMF:      DefaultThreeMF(),
		PDF:          DefaultPDF(),
		SVG:          DefaultSVG(),
	}
}

// Flags renders the core flags shared by every operation:
// backend, experimental features and diagnostics.
func (o Options) Flags() string {
	var b flagBuilder
	b.add("--backend", string(o.Backend))
	b.raw(o.Experimental.Flags())
	b.toggle(o.Quiet, "--quiet")
	b.toggle(o.HardWarnings, "--hardwarnings")
	b.toggle(o.CheckParameters, "--check-parameters")
	b.toggle(o.CheckParameterRanges, "--check-parameter-ranges")
	b.quoted("--debug", o.Debug)
	b.toggle(o.TrustPython, "--trust-python")
	b.quoted("--python-module", o.PythonModule)
	return b.String()
}

// ExportFlags returns the per-format option bundle for formats that define one.
// Other formats add no flags.
func (o Options) ExportFlags(format domain.ExportFormat) string {
	switch format {
	case domain.Format3MF:
		return o.ThreeMF.Flags()
	case domain.FormatPDF:
		return o.PDF.Flags()
	case domain.FormatSVG:
		return o.SVG.Flags()
	default:
		return ""
	}
}

// Validate rejects values that cannot be turned into a command line.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Executable) == "" {
		return fmt.Errorf("%w: executable is empty", domain.ErrInvalidInput)
	}
	if o.OutputDir == "" {
		return fmt.Errorf("%w: output directory is empty", domain.ErrInvalidInput)
	}
	switch o.Backend {
	case BackendCGAL, BackendManifold:
	default:
		return fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidInput, o.Backend)
	}
	if err := o.Image.Validate(); err != nil {
		return fmt.Errorf("image options: %w", err)
	}
	if err := o.Animation.Validate(); err != nil {
		return fmt.Errorf("animation options: %w", err)
	}
	if err := o.ThreeMF.Validate(); err != nil {
		return fmt.Errorf("3mf options: %w", err)
	}
	if err := o.PDF.Validate(); err != nil {
		return fmt.Errorf("pdf options: %w", err)
	}
	if err := o.SVG.Validate(); err != nil {
		return fmt.Errorf("svg options: %w", err)
	}
	return nil
}

// Quote wraps s in single quotes for a POSIX shell.
// Embedded single quotes are closed, escaped and reopened.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Arg returns s unchanged when it only holds characters a shell never
// interprets, and Quote(s) otherwise. Paths go through Arg so the common
// case stays readable in logs.
func Arg(s string) string {
	if s == "" {
		return Quote(s)
	}
	for _, r := range s {
		if !safeArgRune(r) {
			return Quote(s)
		}
	}
	return s
}

func safeArgRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_./:@%+=,-", r)
}

// flagBuilder collects space separated command-line fragments.
type flagBuilder struct {
	parts []string
}

func (b *flagBuilder) raw(s string) {
	if s != "" {
		b.parts = append(b.parts, s)
	}
}

func (b *flagBuilder) add(flag, value string) {
	b.parts = append(b.parts, flag+" "+value)
}

func (b *flagBuilder) toggle(on bool, flag string) {
	if on {
		b.parts = append(b.parts, flag)
	}
}

// quoted emits flag with a shell-quoted value, skipping empty values.
func (b *flagBuilder) quoted(flag, value string) {
	if value != "" {
		b.add(flag, Quote(value))
	}
}

func (b *flagBuilder) String() string {
	return strings.Join(b.parts, " ")
}
