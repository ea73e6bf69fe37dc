// Package fakescad is a scriptable stand-in for the OpenSCAD executable.
// It implements ports.Executor: it parses the command line it receives and
// writes the files the real tool would write, without rendering anything.
package fakescad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Call is one recorded invocation.
type Call struct {
	Command      string
	Args         []string
	Model        string
	Output       string
	SummaryFile  string
	ExportFormat string
	ParamFile    string
	Group        string
	// ParamContent is the parameter file as it existed while the tool ran.
	ParamContent []byte
	Animate      int
	Shard, Count int
}

// ErrToolFailed is returned by Execute when the fake is scripted to fail.
var ErrToolFailed = errors.New("fakescad: tool failed")

// Tool is a fake executor. Configure it before use; it is safe for concurrent calls.
type Tool struct {
	// Definition is written for --export-format param.
	Definition *domain.ParameterDefinition
	// Summary is written to --summary-file. Defaults to SampleSummary.
	Summary *domain.Summary
	// FailOutput, when non-empty, makes every call fail with this captured text.
	FailOutput string
	// FailShard restricts FailOutput to the call rendering that animation shard.
	FailShard int
	// PartialOutput writes the -o file (or frames) before a scripted failure.
	PartialOutput bool
	// SkipSummary leaves the summary file unwritten.
	SkipSummary bool
	// MalformedSummary writes a summary that is not valid JSON.
	MalformedSummary bool
	// SkipOutput leaves the -o file unwritten.
	SkipOutput bool
	// Delay is slept before writing anything, to widen concurrency windows.
	Delay time.Duration

	mu    sync.Mutex
	calls []Call
}

// New returns a fake that succeeds with the sample summary.
func New() *Tool {
	return &Tool{}
}

// SampleSummary is a representative summary of a 20mm cube.
func SampleSummary() *domain.Summary {
	return &domain.Summary{
		Cache: domain.Caches{
			CGALCache:     domain.CacheStats{MaxSize: 104857600},
			GeometryCache: domain.CacheStats{Bytes: 2304, Entries: 3, MaxSize: 104857600},
		},
		Camera: domain.CameraPose{Distance: 140, FOV: 22.5, Rotation: domain.Vec3{55, 0, 25}},
		Geometry: domain.GeometryStats{
			BoundingBox: domain.BoundingBox{
				Max:  domain.Vec3{10, 10, 10},
				Min:  domain.Vec3{-10, -10, -10},
				Size: domain.Vec3{20, 20, 20},
			},
			Dimensions: 3,
			Facets:     6,
			Simple:     true,
			Vertices:   8,
		},
		Time: domain.Timing{Milliseconds: 42, Time: "0:00:00.042", Total: 0.042},
	}
}

// Calls returns a copy of the recorded invocations.
func (t *Tool) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// LastCall returns the most recent invocation.
func (t *Tool) LastCall() (Call, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return Call{}, false
	}
	return t.calls[len(t.calls)-1], true
}

// Execute implements ports.Executor.
func (t *Tool) Execute(ctx context.Context, command string) (string, error) {
	args, err := Split(command)
	if err != nil {
		return "", err
	}
	call, err := parse(command, args)
	if err != nil {
		return "", err
	}
	if call.ParamFile != "" {
		call.ParamContent, _ = os.ReadFile(call.ParamFile)
	}

	t.mu.Lock()
	t.calls = append(t.calls, call)
	t.mu.Unlock()

	if t.Delay > 0 {
		time.Sleep(t.Delay)
	}
	if t.FailOutput != "" && (t.FailShard == 0 || t.FailShard == call.Shard) {
		if t.PartialOutput {
			if err := t.writeProduct(call); err != nil {
				return "", err
			}
		}
		return t.FailOutput, fmt.Errorf("%w: %s", ErrToolFailed, t.FailOutput)
	}

	if err := t.writeOutputs(call); err != nil {
		return "", err
	}
	return fmt.Sprintf("Parsing design (AST generation)...\nSaved %s\n", call.Output), nil
}

func (t *Tool) writeOutputs(call Call) error {
	if !t.SkipOutput {
		if err := t.writeProduct(call); err != nil {
			return err
		}
	}

	if call.SummaryFile == "" || t.SkipSummary {
		return nil
	}
	if t.MalformedSummary {
		return os.WriteFile(call.SummaryFile, []byte(`{"cache":`), 0o644)
	}
	s := t.Summary
	if s == nil {
		s = SampleSummary()
	}
	return writeJSON(call.SummaryFile, s)
}

// writeProduct writes what -o names: a definition, animation frames or the export.
func (t *Tool) writeProduct(call Call) error {
	if call.Output != "" {
		switch {
		case call.ExportFormat == string(domain.FormatParam):
			def := t.Definition
			if def == nil {
				def = &domain.ParameterDefinition{Title: "fake"}
			}
			if err := writeJSON(call.Output, def); err != nil {
				return err
			}
		case call.Animate > 0:
			for _, frame := range frames(call) {
				if err := os.WriteFile(frame, []byte("PNG"), 0o644); err != nil {
					return err
				}
			}
		default:
			if err := os.WriteFile(call.Output, []byte("fake "+call.ExportFormat), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

// frames lists the frame files of an animation call. Sharded calls only
// write the frames of their slice.
func frames(call Call) []string {
	stem := strings.TrimSuffix(call.Output, filepath.Ext(call.Output))
	first, last := 0, call.Animate
	if call.Count > 0 {
		per := (call.Animate + call.Count - 1) / call.Count
		first = (call.Shard - 1) * per
		last = min(first+per, call.Animate)
	}
	var out []string
	for i := first; i < last; i++ {
		out = append(out, fmt.Sprintf("%s%05d.png", stem, i))
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func parse(command string, args []string) (Call, error) {
	call := Call{Command: command, Args: args, ExportFormat: "png"}
	if len(args) < 2 {
		return call, fmt.Errorf("fakescad: command too short: %q", command)
	}
	call.Model = args[len(args)-1]

	for i := 1; i < len(args)-1; i++ {
		next := func() string {
			i++
			return args[i]
		}
		switch args[i] {
		case "-o":
			call.Output = next()
		case "--summary-file":
			call.SummaryFile = next()
		case "--export-format":
			call.ExportFormat = next()
		case "-p":
			call.ParamFile = next()
		case "-P":
			call.Group = next()
		case "--animate":
			n, err := strconv.Atoi(next())
			if err != nil {
				return call, fmt.Errorf("fakescad: --animate: %w", err)
			}
			call.Animate = n
		case "--animate-sharding":
			if _, err := fmt.Sscanf(next(), "%d/%d", &call.Shard, &call.Count); err != nil {
				return call, fmt.Errorf("fakescad: --animate-sharding: %w", err)
			}
		}
	}
	return call, nil
}
