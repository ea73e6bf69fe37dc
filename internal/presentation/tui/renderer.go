package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Presenter prints results as markdown. Output to a terminal is styled with
// glamour; anything else gets the raw markdown.
type Presenter struct {
	w      io.Writer
	render func(string) (string, error)
}

// NewPresenter styles output only when w is a terminal.
func NewPresenter(w io.Writer) *Presenter {
	p := &Presenter{w: w}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.render = NewRenderer()
	}
	return p
}

// Summary prints the produced file and the summary statistics.
func (p *Presenter) Summary(res *domain.SummaryResult) error {
	return p.print(SummaryMarkdown(res))
}

// Definition prints the parameters of a model.
func (p *Presenter) Definition(res *domain.DefinitionResult) error {
	return p.print(DefinitionMarkdown(res))
}

func (p *Presenter) print(markdown string) error {
	out := markdown
	if p.render != nil {
		rendered, err := p.render(markdown)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		out = rendered
	}
	_, err := io.WriteString(p.w, out)
	return err
}

// SummaryMarkdown describes an image, animation or export result.
func SummaryMarkdown(res *domain.SummaryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.ModelFile)
	fmt.Fprintf(&b, "**File:** `%s`\n\n", res.File)
	if res.ID != "" {
		fmt.Fprintf(&b, "**Result:** `%s`\n\n", res.ID)
	}

	if s := res.Summary; s != nil {
		g := s.Geometry
		b.WriteString("| Geometry | |\n|---|---|\n")
		fmt.Fprintf(&b, "| Dimensions | %dD |\n", g.Dimensions)
		fmt.Fprintf(&b, "| Facets | %d |\n", g.Facets)
		fmt.Fprintf(&b, "| Vertices | %d |\n", g.Vertices)
		fmt.Fprintf(&b, "| Simple | %t |\n", g.Simple)
		fmt.Fprintf(&b, "| Size | %s |\n", vec(g.BoundingBox.Size))
		fmt.Fprintf(&b, "| Min | %s |\n", vec(g.BoundingBox.Min))
		fmt.Fprintf(&b, "| Max | %s |\n", vec(g.BoundingBox.Max))
		if s.Time.Time != "" {
			fmt.Fprintf(&b, "| Time | %s |\n", s.Time.Time)
		}
		b.WriteString("\n")
	}

	writeOutput(&b, res.Output.Output)
	return b.String()
}

// DefinitionMarkdown lists the parameters of a definition result.
func DefinitionMarkdown(res *domain.DefinitionResult) string {
	var b strings.Builder
	def := res.ParameterDefinition
	title := res.ModelFile
	if def != nil && def.Title != "" {
		title = def.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**File:** `%s`\n\n", res.File)

	if def == nil || len(def.Parameters) == 0 {
		b.WriteString("_No parameters._\n")
		return b.String()
	}

	b.WriteString("| Name | Group | Type | Initial | Constraint | Caption |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, p := range def.Parameters {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			p.Name, p.Group, p.Type, cell(domain.FormatInitial(p.Initial)), cell(constraint(p)), cell(p.Caption))
	}
	return b.String()
}

func constraint(p domain.Parameter) string {
	if len(p.Options) > 0 {
		names := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			names = append(names, o.Name)
		}
		return strings.Join(names, ", ")
	}
	var parts []string
	if p.Min != nil || p.Max != nil {
		parts = append(parts, fmt.Sprintf("%s..%s", bound(p.Min), bound(p.Max)))
	}
	if p.Step != nil {
		parts = append(parts, "step "+bound(p.Step))
	}
	if p.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("max length %d", *p.MaxLength))
	}
	return strings.Join(parts, " ")
}

func bound(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}

func vec(v domain.Vec3) string {
	return fmt.Sprintf("%g × %g × %g", v[0], v[1], v[2])
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeOutput(b *strings.Builder, output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	b.WriteString("```\n")
	b.WriteString(output)
	b.WriteString("\n```\n")
}
