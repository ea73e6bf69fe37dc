package domain

import "time"

// Operation names an orchestrator operation.
type Operation string

const (
	OpDefinition Operation = "definition"
	OpImage      Operation = "image"
	OpAnimation  Operation = "animation"
	OpExport2D   Operation = "export2d"
	OpExport3D   Operation = "export3d"
)

// Output is what every operation returns: the captured text of the tool,
// the model that was processed and the produced file (or glob pattern for
// animation frames).
type Output struct {
	ID        string `json:"id,omitempty"` // set when the result was persisted
	Output    string `json:"output"`
	ModelFile string `json:"modelFile"`
	File      string `json:"file"`
}

// SummaryResult is returned by image, animation and export operations.
type SummaryResult struct {
	Output
	Summary *Summary `json:"summary"`
}

// DefinitionResult is returned by parameter definition extraction.
type DefinitionResult struct {
	Output
	ParameterDefinition *ParameterDefinition `json:"parameterDefinition"`
}

// Record is a persisted trace of one operation, kept by a ResultStore.
type Record struct {
	ID         string               `json:"id"`
	Operation  Operation            `json:"operation"`
	Format     ExportFormat         `json:"format,omitempty"`
	ModelFile  string               `json:"modelFile"`
	File       string               `json:"file,omitempty"`
	Output     string               `json:"output,omitempty"`
	Summary    *Summary             `json:"summary,omitempty"`
	Definition *ParameterDefinition `json:"parameterDefinition,omitempty"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	Duration   time.Duration        `json:"duration"`
}
