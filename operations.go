package scadwrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
	"github.com/yannickbattail/scadwrap/pkg/schema"
)

// DefinitionLabel names the parameter definition file in errors.
const DefinitionLabel = "parameter definition file"

// ParameterDefinition extracts the customizer parameters of the model.
// The tool writes <outputDir>/<model>.param.json, which is kept for callers
// that want to read it again. Concurrent calls share a single invocation.
func (c *Client) ParameterDefinition(ctx context.Context) (*domain.DefinitionResult, error) {
	out := c.files.OutputPath(c.modelFile, "", domain.FormatParam, false)

	// The shared call must not fail for every waiter when the caller that
	// started it goes away; each caller still returns on its own ctx.
	ch := c.definitions.DoChan(out, func() (any, error) {
		return c.extractDefinition(context.WithoutCancel(ctx), out)
	})
	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s %s: %w", domain.OpDefinition, c.modelFile, ctx.Err())
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}
	res := r.Val.(*domain.DefinitionResult)
	if r.Shared {
		c.logger.Debug("parameter definition shared with a concurrent call", "path", out)
		cp := *res
		return &cp, nil
	}
	return res, nil
}

func (c *Client) extractDefinition(ctx context.Context, out string) (res *domain.DefinitionResult, err error) {
	start := time.Now()
	defer func() {
		rec := domain.Record{Operation: domain.OpDefinition, Format: domain.FormatParam, ModelFile: c.modelFile, File: out}
		if res != nil {
			rec.Output = res.Output.Output
			rec.Definition = res.ParameterDefinition
		}
		if id := c.persist(ctx, rec, start, err); res != nil {
			res.ID = id
		}
	}()

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, out, c.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("%s %s: locking %s: %w", domain.OpDefinition, c.modelFile, out, err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				c.logger.Warn("failed to release definition lock", "path", out, "err", uerr)
			}
		}()
	}

	command := join(
		options.Arg(c.opts.Executable),
		c.opts.Flags(),
		"--export-format "+string(domain.FormatParam),
		"-o", options.Arg(out),
		options.Arg(c.modelFile),
	)
	text, err := c.invoke(ctx, domain.OpDefinition, command)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", domain.OpDefinition, c.modelFile, err)
	}

	def, err := readDefinition(out)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", domain.OpDefinition, c.modelFile, err)
	}

	return &domain.DefinitionResult{
		Output:              domain.Output{Output: text, ModelFile: c.modelFile, File: out},
		ParameterDefinition: def,
	}, nil
}

func readDefinition(path string) (*domain.ParameterDefinition, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.MissingOutput(DefinitionLabel, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", DefinitionLabel, path, err)
	}
	var def domain.ParameterDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, domain.MalformedOutput(DefinitionLabel, path, err)
	}
	return &def, nil
}

// Image renders a still PNG. The result file is the raster path.
func (c *Client) Image(ctx context.Context, in domain.ParameterInput, img options.ImageOptions) (*domain.SummaryResult, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return c.render(ctx, in, invocation{
		op:     domain.OpImage,
		format: domain.FormatPNG,
		flags:  img.Flags(),
	})
}

// Animation renders the frames of an animation. The result file is a glob
// pattern matching every frame; stitching them is left to the caller
// (see package animation).
func (c *Client) Animation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions) (*domain.SummaryResult, error) {
	if err := anim.Validate(); err != nil {
		return nil, err
	}
	return c.animation(ctx, in, anim, false)
}

func (c *Client) animation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions, sharded bool) (*domain.SummaryResult, error) {
	return c.render(ctx, in, invocation{
		op:           domain.OpAnimation,
		format:       domain.FormatPNG,
		flags:        anim.Flags(),
		animation:    true,
		sharedFrames: sharded,
	})
}

// ShardedAnimation splits the frames of one animation over shards concurrent
// invocations. Results are ordered by shard. The first failure is returned
// once every shard has finished.
func (c *Client) ShardedAnimation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions, shards int) ([]*domain.SummaryResult, error) {
	if shards < 1 {
		return nil, fmt.Errorf("%w: shard count must be positive, got %d", domain.ErrInvalidInput, shards)
	}
	if shards > anim.Frames {
		return nil, fmt.Errorf("%w: %d shards for %d frames", domain.ErrInvalidInput, shards, anim.Frames)
	}

	results := make([]*domain.SummaryResult, shards)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		i := i
		g.Go(func() error {
			shard := anim.WithShard(i+1, shards)
			if err := shard.Validate(); err != nil {
				return err
			}
			res, err := c.animation(gctx, in, shard, true)
			if err != nil {
				return fmt.Errorf("shard %d/%d: %w", i+1, shards, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Every shard has stopped; drop the frames of the ones that succeeded.
		if in.Validate() == nil {
			c.discardOutput(c.files.FramePattern(c.modelFile, in.Group()))
		}
		return nil, err
	}
	return results, nil
}

// Export2D writes a 2D drawing (dxf, svg, pdf, png).
func (c *Client) Export2D(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat) (*domain.SummaryResult, error) {
	return c.export(ctx, in, format, domain.Family2D, domain.OpExport2D)
}

// Export3D writes a 3D model. asciistl and binstl both produce a .stl file and
// are told apart only by --export-format.
func (c *Client) Export3D(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat) (*domain.SummaryResult, error) {
	return c.export(ctx, in, format, domain.Family3D, domain.OpExport3D)
}

func (c *Client) export(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat, family domain.FormatFamily, op domain.Operation) (*domain.SummaryResult, error) {
	if !format.Valid() || format.Internal() || format.Family() != family {
		return nil, fmt.Errorf("%w: %q is not a %s format", domain.ErrUnsupportedFormat, format, family)
	}
	return c.render(ctx, in, invocation{
		op:           op,
		format:       format,
		flags:        c.opts.ExportFlags(format),
		exportFormat: true,
	})
}

// Export dispatches to Export2D or Export3D by the family of format.
func (c *Client) Export(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat) (*domain.SummaryResult, error) {
	switch format.Family() {
	case domain.Family2D:
		return c.Export2D(ctx, in, format)
	case domain.Family3D:
		return c.Export3D(ctx, in, format)
	default:
		return nil, fmt.Errorf("%w: %q cannot be exported", domain.ErrUnsupportedFormat, format)
	}
}

// checkParameters validates in-memory inputs against the model definition
// when strict mode is on. Caller-owned files are passed through untouched.
func (c *Client) checkParameters(ctx context.Context, in domain.ParameterInput) error {
	if !c.strict || in.Kind() == domain.InputFile {
		return nil
	}
	set, group, err := in.Resolve()
	if err != nil {
		return err
	}
	values, _ := set.Group(group)
	kv := make([]domain.ParameterKV, 0, len(values))
	for name, value := range values {
		kv = append(kv, domain.ParameterKV{Parameter: name, Value: value})
	}
	sort.Slice(kv, func(i, j int) bool { return kv[i].Parameter < kv[j].Parameter })

	def, err := c.cachedDefinition(ctx)
	if err != nil {
		return err
	}
	return schema.ValidateParameters(schema.FromDefinition(def), kv)
}

func (c *Client) cachedDefinition(ctx context.Context) (*domain.ParameterDefinition, error) {
	c.defMu.Lock()
	def := c.defVal
	c.defMu.Unlock()
	if def != nil {
		return def, nil
	}

	res, err := c.ParameterDefinition(ctx)
	if err != nil {
		return nil, err
	}
	c.defMu.Lock()
	c.defVal = res.ParameterDefinition
	c.defMu.Unlock()
	return res.ParameterDefinition, nil
}
