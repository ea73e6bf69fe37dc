// Package summary captures the statistics file the tool writes with --summary-file.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ephemeral"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

// Label names the summary file in errors.
const Label = "summary file"

// Capture is one summary file allocated for one invocation.
type Capture struct {
	path string
}

// Allocate reserves <paramFile>.summary<token>.json. The path derives from the
// per-call parameter file so concurrent calls on one model never share it.
func Allocate(paramFile string) *Capture {
	return &Capture{path: paramFile + ".summary" + ephemeral.Token() + ".json"}
}

// Path returns the allocated summary path.
func (c *Capture) Path() string {
	return c.path
}

// Flags enables full summary output into the allocated path.
func (c *Capture) Flags() string {
	return "--summary all --summary-file " + options.Arg(c.path)
}

// Collect parses and deletes the summary file. A missing file is an error
// naming the expected path; it is never treated as an empty summary.
func (c *Capture) Collect() (*domain.Summary, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.MissingOutput(Label, c.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", Label, c.path, err)
	}

	var s domain.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		_ = c.Discard()
		return nil, domain.MalformedOutput(Label, c.path, err)
	}
	if err := c.Discard(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Discard removes the summary file if it exists.
func (c *Capture) Discard() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s %s: %w", Label, c.path, err)
	}
	return nil
}
