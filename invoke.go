package scadwrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
	"github.com/yannickbattail/scadwrap/pkg/summary"
)

// OutputLabel names the produced file in errors.
const OutputLabel = "output file"

// invocation describes the operation specific part of a render call.
type invocation struct {
	op     domain.Operation
	format domain.ExportFormat
	flags  string
	// exportFormat appends --export-format after the parameter flags.
	exportFormat bool
	// animation outputs are frame sequences written next to a _animImg stem.
	animation bool
	// sharedFrames marks one shard of a sharded animation. Its frame pattern
	// also matches the frames of sibling shards, so the caller discards them
	// once every shard has finished.
	sharedFrames bool
}

// render is the skeleton shared by image, animation and export operations.
func (c *Client) render(ctx context.Context, in domain.ParameterInput, inv invocation) (res *domain.SummaryResult, err error) {
	start := time.Now()
	defer func() {
		rec := domain.Record{Operation: inv.op, Format: inv.format, ModelFile: c.modelFile}
		if res != nil {
			rec.File = res.File
			rec.Output = res.Output.Output
			rec.Summary = res.Summary
		}
		if id := c.persist(ctx, rec, start, err); res != nil {
			res.ID = id
		}
	}()

	if err := c.checkParameters(ctx, in); err != nil {
		return nil, fmt.Errorf("%s %s: %w", inv.op, c.modelFile, err)
	}

	pf, err := c.files.Materialize(c.modelFile, in)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", inv.op, c.modelFile, err)
	}
	defer func() {
		if rerr := pf.Release(); rerr != nil {
			c.logger.Warn("failed to remove parameter file", "path", pf.Path, "err", rerr)
		}
	}()

	out := c.files.OutputPath(c.modelFile, pf.Group, inv.format, inv.animation)
	capture := summary.Allocate(pf.Path)

	exportFlag := ""
	if inv.exportFormat {
		exportFlag = "--export-format " + string(inv.format)
	}
	command := join(
		options.Arg(c.opts.Executable),
		c.opts.Flags(),
		inv.flags,
		capture.Flags(),
		"-p", options.Arg(pf.Path),
		"-P", options.Arg(pf.Group),
		exportFlag,
		"-o", options.Arg(out),
		options.Arg(c.modelFile),
	)

	file := out
	if inv.animation {
		file = c.files.FramePattern(c.modelFile, pf.Group)
	}

	text, err := c.invoke(ctx, inv.op, command)
	if err != nil {
		if derr := capture.Discard(); derr != nil {
			c.logger.Warn("failed to remove summary file", "path", capture.Path(), "err", derr)
		}
		if !inv.sharedFrames {
			c.discardOutput(file)
		}
		return nil, fmt.Errorf("%s %s: %w", inv.op, c.modelFile, err)
	}

	s, err := capture.Collect()
	if err != nil {
		if !inv.sharedFrames {
			c.discardOutput(file)
		}
		return nil, fmt.Errorf("%s %s: %w", inv.op, c.modelFile, err)
	}
	if err := verifyOutput(file); err != nil {
		return nil, fmt.Errorf("%s %s: %w", inv.op, c.modelFile, err)
	}

	return &domain.SummaryResult{
		Output:  domain.Output{Output: text, ModelFile: c.modelFile, File: file},
		Summary: s,
	}, nil
}

// invoke runs one command through the executor inside a span and fires the hooks.
func (c *Client) invoke(ctx context.Context, op domain.Operation, command string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "scadwrap."+string(op), trace.WithAttributes(
		attribute.String("scad.model", c.modelFile),
		attribute.String("scad.operation", string(op)),
	))
	defer span.End()

	event := &domain.InvocationEvent{
		Timestamp: time.Now(),
		Operation: op,
		ModelFile: c.modelFile,
		Command:   command,
	}
	if c.hooks.OnInvoke != nil {
		c.hooks.OnInvoke(ctx, event)
	}
	c.logger.Debug("invoking tool", "operation", op, "command", command)

	text, err := c.exec.Execute(ctx, command)

	event.Duration = time.Since(event.Timestamp)
	event.Err = err
	if c.hooks.OnComplete != nil {
		c.hooks.OnComplete(ctx, event)
	}
	span.SetAttributes(attribute.Int64("scad.duration_ms", event.Duration.Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("tool invocation failed", "operation", op, "duration", event.Duration, "err", err)
		return text, err
	}
	c.logger.Info("tool invocation completed", "operation", op, "duration", event.Duration)
	return text, nil
}

// persist saves a record when a store is configured and returns its ID.
// Store failures are logged, never returned: the operation itself succeeded or failed already.
func (c *Client) persist(ctx context.Context, rec domain.Record, start time.Time, opErr error) string {
	if c.store == nil {
		return ""
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = start.UTC()
	rec.Duration = time.Since(start)
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	if err := c.store.Save(context.WithoutCancel(ctx), &rec); err != nil {
		c.logger.Warn("failed to persist result", "id", rec.ID, "operation", rec.Operation, "err", err)
		return ""
	}
	return rec.ID
}

// discardOutput removes what a failed call produced: a single file or every
// file matching a frame pattern.
func (c *Client) discardOutput(file string) {
	paths := []string{file}
	if strings.ContainsRune(file, '*') {
		paths, _ = filepath.Glob(file)
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to remove output", "path", p, "err", err)
		}
	}
}

// verifyOutput requires the produced file, or at least one frame, to exist.
func verifyOutput(file string) error {
	if strings.ContainsRune(file, '*') {
		matches, err := filepath.Glob(file)
		if err != nil {
			return fmt.Errorf("matching %s: %w", file, err)
		}
		if len(matches) == 0 {
			return domain.MissingOutput("animation frames", file)
		}
		return nil
	}
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.MissingOutput(OutputLabel, file)
		}
		return fmt.Errorf("checking %s %s: %w", OutputLabel, file, err)
	}
	return nil
}

// join builds a command line from its parts, skipping empty ones.
func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
