package scadwrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/yannickbattail/scadwrap/internal/logging"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ephemeral"
	"github.com/yannickbattail/scadwrap/pkg/options"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// TracerName is the instrumentation name used when no tracer is injected.
const TracerName = "github.com/yannickbattail/scadwrap"

// DefaultLockTTL bounds how long a definition extraction may hold the distributed lock.
const DefaultLockTTL = 2 * time.Minute

// Client runs the tool against a single model file.
// It holds no per-call mutable state and is safe for concurrent use.
type Client struct {
	modelFile string
	opts      options.Options
	exec      ports.Executor
	files     *ephemeral.Manager

	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	tracer  trace.Tracer
	store   ports.ResultStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	strict  bool

	definitions singleflight.Group

	// definition cache used by strict parameter checking
	defMu  sync.Mutex
	defVal *domain.ParameterDefinition
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used to span tool invocations.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithResultStore persists a Record for every operation, successful or not.
// Results then carry the record ID.
func WithResultStore(store ports.ResultStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLocker serializes parameter definition extraction across processes
// sharing the output directory. A zero ttl selects DefaultLockTTL.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(c *Client) {
		c.locker = locker
		c.lockTTL = ttl
	}
}

// WithStrictParameters validates in-memory parameter inputs against the
// model's parameter definition before the tool runs.
func WithStrictParameters() Option {
	return func(c *Client) {
		c.strict = true
	}
}

// New returns a Client for modelFile. opts is copied and validated once.
func New(modelFile string, opts options.Options, exec ports.Executor, clientOpts ...Option) (*Client, error) {
	if strings.TrimSpace(modelFile) == "" {
		return nil, fmt.Errorf("%w: model file is required", domain.ErrInvalidInput)
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: executor is required", domain.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		modelFile: modelFile,
		opts:      opts,
		exec:      exec,
	}
	for _, opt := range clientOpts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	c.logger = c.logger.With("model", modelFile)
	if c.tracer == nil {
		c.tracer = otel.Tracer(TracerName)
	}
	if c.lockTTL <= 0 {
		c.lockTTL = DefaultLockTTL
	}

	onTemp := c.hooks.OnTempFile
	var fileOpts []ephemeral.Option
	if onTemp != nil {
		fileOpts = append(fileOpts, ephemeral.WithFileObserver(func(delta int) {
			onTemp(context.Background(), delta)
		}))
	}
	c.files = ephemeral.New(opts.OutputDir, fileOpts...)

	return c, nil
}

// ModelFile returns the model the client operates on.
func (c *Client) ModelFile() string {
	return c.modelFile
}

// Options returns a copy of the invocation options.
func (c *Client) Options() options.Options {
	return c.opts
}

// Files exposes the path derivation used by the client.
func (c *Client) Files() *ephemeral.Manager {
	return c.files
}
