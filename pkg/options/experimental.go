package options

import "strings"

// ExperimentalFeatures toggles the tool's `--enable` features.
// Field order is the emission order.
type ExperimentalFeatures struct {
	Roof                          bool `json:"roof" yaml:"roof" mapstructure:"roof"`
	InputDriverDBus               bool `json:"input_driver_dbus" yaml:"input_driver_dbus" mapstructure:"input_driver_dbus"`
	LazyUnion                     bool `json:"lazy_union" yaml:"lazy_union" mapstructure:"lazy_union"`
	VertexObjectRenderersIndexing bool `json:"vertex_object_renderers_indexing" yaml:"vertex_object_renderers_indexing" mapstructure:"vertex_object_renderers_indexing"`
	TextMetrics                   bool `json:"textmetrics" yaml:"textmetrics" mapstructure:"textmetrics"`
	ImportFunction                bool `json:"import_function" yaml:"import_function" mapstructure:"import_function"`
	ObjectFunction                bool `json:"object_function" yaml:"object_function" mapstructure:"object_function"`
	PredictibleOutput             bool `json:"predictible_output" yaml:"predictible_output" mapstructure:"predictible_output"`
	PythonEngine                  bool `json:"python_engine" yaml:"python_engine" mapstructure:"python_engine"`
}

// DefaultExperimentalFeatures enables every feature that does not need extra runtime support.
func DefaultExperimentalFeatures() ExperimentalFeatures {
	return ExperimentalFeatures{
		Roof:                          true,
		LazyUnion:                     true,
		VertexObjectRenderersIndexing: true,
		TextMetrics:                   true,
		ImportFunction:                true,
		PredictibleOutput:             true,
	}
}

type feature struct {
	name    string
	enabled bool
}

func (e ExperimentalFeatures) features() []feature {
	return []feature{
		{"roof", e.Roof},
		{"input_driver_dbus", e.InputDriverDBus},
		{"lazy_union", e.LazyUnion},
		{"vertex_object_renderers_indexing", e.VertexObjectRenderersIndexing},
		{"textmetrics", e.TextMetrics},
		{"import_function", e.ImportFunction},
		{"object_function", e.ObjectFunction},
		{"predictible_output", e.PredictibleOutput},
		{"python_engine", e.PythonEngine},
	}
}

// Enabled lists the kebab-case names of the enabled features in declaration order.
func (e ExperimentalFeatures) Enabled() []string {
	var names []string
	for _, f := range e.features() {
		if f.enabled {
			names = append(names, kebab(f.name))
		}
	}
	return names
}

// Flags renders one `--enable <name>` per enabled feature.
func (e ExperimentalFeatures) Flags() string {
	var b flagBuilder
	for _, name := range e.Enabled() {
		b.add("--enable", name)
	}
	return b.String()
}

func kebab(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
