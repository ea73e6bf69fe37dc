// Package animation assembles the frames written by an animation call into
// a single animated WebP.
package animation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yannickbattail/scadwrap/internal/logging"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ephemeral"
	"github.com/yannickbattail/scadwrap/pkg/options"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// DefaultTool is the WebP assembler invoked by default.
const DefaultTool = "img2webp"

// Label names the stitched file in errors.
const Label = "animation file"

// Stitcher runs the WebP assembler through an executor.
type Stitcher struct {
	exec   ports.Executor
	tool   string
	logger *slog.Logger
}

// Option configures a Stitcher.
type Option func(*Stitcher)

// WithTool overrides the assembler executable.
func WithTool(path string) Option {
	return func(s *Stitcher) {
		s.tool = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stitcher) {
		s.logger = l
	}
}

// NewStitcher returns a Stitcher using exec.
func NewStitcher(exec ports.Executor, opts ...Option) *Stitcher {
	s := &Stitcher{exec: exec, tool: DefaultTool}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// Stitch is a shorthand for NewStitcher(exec).Stitch.
func Stitch(ctx context.Context, exec ports.Executor, res *domain.SummaryResult, delayMs int) (*domain.SummaryResult, error) {
	return NewStitcher(exec).Stitch(ctx, res, delayMs)
}

// Stitch assembles the frames matched by res.File into <stem>.webp with
// delayMs between frames, removes the frames and returns a copy of res
// pointing at the animation. The tool output is appended to the result text.
func (s *Stitcher) Stitch(ctx context.Context, res *domain.SummaryResult, delayMs int) (*domain.SummaryResult, error) {
	if res == nil || !strings.Contains(res.File, "*") {
		return nil, fmt.Errorf("%w: result is not a frame pattern", domain.ErrInvalidInput)
	}
	if delayMs < 0 {
		return nil, fmt.Errorf("%w: negative frame delay %d", domain.ErrInvalidInput, delayMs)
	}

	frames, err := filepath.Glob(res.File)
	if err != nil {
		return nil, fmt.Errorf("matching frames %s: %w", res.File, err)
	}
	if len(frames) == 0 {
		return nil, domain.MissingOutput("animation frames", res.File)
	}

	out := WebPPath(res.File)
	command := strings.Join([]string{
		options.Arg(s.tool),
		"-o", options.Arg(out),
		"-d", strconv.Itoa(delayMs),
		globArg(res.File),
	}, " ")
	s.logger.Debug("stitching animation", "frames", len(frames), "command", command)

	text, err := s.exec.Execute(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("stitching %s: %w", out, err)
	}
	if _, err := os.Stat(out); errors.Is(err, fs.ErrNotExist) {
		return nil, domain.MissingOutput(Label, out)
	}

	for _, f := range frames {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to remove frame", "path", f, "err", err)
		}
	}

	stitched := *res
	stitched.File = out
	stitched.Output.Output = res.Output.Output + text
	return &stitched, nil
}

// WebPPath maps a frame pattern such as out/cube_model_animImg*.png to out/cube_model.webp.
func WebPPath(pattern string) string {
	stem, _, _ := strings.Cut(pattern, "*")
	stem = strings.TrimSuffix(stem, ephemeral.AnimImageSuffix)
	return stem + ".webp"
}

// globArg quotes the literal parts of a pattern and leaves the wildcards to the shell.
func globArg(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		if p != "" {
			parts[i] = options.Arg(p)
		}
	}
	return strings.Join(parts, "*")
}
