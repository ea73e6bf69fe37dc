package domain

import (
	"fmt"
	"strings"
)

// ExportFormat is an output representation the external tool can produce.
type ExportFormat string

// FormatFamily partitions the export formats.
type FormatFamily string

const (
	Family3D   FormatFamily = "3d"
	Family2D   FormatFamily = "2d"
	FamilyText FormatFamily = "text"
)

// 3D mesh formats.
const (
	FormatSTL      ExportFormat = "stl"
	FormatASCIISTL ExportFormat = "asciistl"
	FormatBinSTL   ExportFormat = "binstl"
	FormatOFF      ExportFormat = "off"
	FormatWRL      ExportFormat = "wrl"
	FormatAMF      ExportFormat = "amf"
	Format3MF      ExportFormat = "3mf"
	FormatPOV      ExportFormat = "pov"
)

// 2D drawing formats.
const (
	FormatDXF ExportFormat = "dxf"
	FormatSVG ExportFormat = "svg"
	FormatPDF ExportFormat = "pdf"
	FormatPNG ExportFormat = "png"
)

// Text and diagnostic formats.
const (
	FormatEcho     ExportFormat = "echo"
	FormatAST      ExportFormat = "ast"
	FormatTerm     ExportFormat = "term"
	FormatNef3     ExportFormat = "nef3"
	FormatNefDbg   ExportFormat = "nefdbg"
	FormatParam    ExportFormat = "param"
	FormatSummary  ExportFormat = "summary"
	FormatParamSet ExportFormat = "paramSet"
)

var formatFamilies = map[ExportFormat]FormatFamily{
	FormatSTL:      Family3D,
	FormatASCIISTL: Family3D,
	FormatBinSTL:   Family3D,
	FormatOFF:      Family3D,
	FormatWRL:      Family3D,
	FormatAMF:      Family3D,
	Format3MF:      Family3D,
	FormatPOV:      Family3D,
	FormatDXF:      Family2D,
	FormatSVG:      Family2D,
	FormatPDF:      Family2D,
	FormatPNG:      Family2D,
	FormatEcho:     FamilyText,
	FormatAST:      FamilyText,
	FormatTerm:     FamilyText,
	FormatNef3:     FamilyText,
	FormatNefDbg:   FamilyText,
	FormatParam:    FamilyText,
	FormatSummary:  FamilyText,
	FormatParamSet: FamilyText,
}

// Formats returns every known export format in a stable order:
// 3D first, then 2D, then text.
func Formats() []ExportFormat {
	return []ExportFormat{
		FormatSTL, FormatASCIISTL, FormatBinSTL, FormatOFF, FormatWRL, FormatAMF, Format3MF, FormatPOV,
		FormatDXF, FormatSVG, FormatPDF, FormatPNG,
		FormatEcho, FormatAST, FormatTerm, FormatNef3, FormatNefDbg, FormatParam, FormatSummary, FormatParamSet,
	}
}

// ParseExportFormat resolves a user supplied format name.
// Matching is case-insensitive so "paramset" resolves to FormatParamSet.
func ParseExportFormat(s string) (ExportFormat, error) {
	for _, f := range Formats() {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Family reports which family the format belongs to.
// Unknown formats return an empty family.
func (f ExportFormat) Family() FormatFamily {
	return formatFamilies[f]
}

// Valid reports whether f is one of the known formats.
func (f ExportFormat) Valid() bool {
	_, ok := formatFamilies[f]
	return ok
}

// Internal reports whether the format is only used for files the wrapper
// manages itself and is never a final user-facing output.
func (f ExportFormat) Internal() bool {
	return f == FormatParam || f == FormatSummary || f == FormatParamSet
}

// Extension returns the file extension (without the leading dot).
// Both STL variants share "stl"; they are told apart by --export-format.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatASCIISTL, FormatBinSTL:
		return "stl"
	case FormatParamSet:
		return "json"
	case FormatParam:
		return "param.json"
	case FormatSummary:
		return "summary.json"
	default:
		return string(f)
	}
}

func (f ExportFormat) String() string {
	return string(f)
}
