package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yannickbattail/scadwrap"
	"github.com/yannickbattail/scadwrap/internal/config"
	httpAdapter "github.com/yannickbattail/scadwrap/pkg/adapters/http"
	"github.com/yannickbattail/scadwrap/pkg/adapters/file"
	"github.com/yannickbattail/scadwrap/pkg/adapters/memory"
	"github.com/yannickbattail/scadwrap/pkg/adapters/process"
	"github.com/yannickbattail/scadwrap/pkg/adapters/redis"
	"github.com/yannickbattail/scadwrap/pkg/animation"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/observability"
	"github.com/yannickbattail/scadwrap/pkg/persistence/middleware"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// RuntimeOption configures NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	exec    ports.Executor
	echo    io.Writer
	streams bool
}

// WithExecutor replaces the process runner (tests use a fake tool).
func WithExecutor(exec ports.Executor) RuntimeOption {
	return func(o *runtimeOptions) {
		o.exec = exec
	}
}

// WithEcho mirrors the tool's output to w.
func WithEcho(w io.Writer) RuntimeOption {
	return func(o *runtimeOptions) {
		o.echo = w
	}
}

// WithStreams enables the SSE event stream for invocations.
func WithStreams() RuntimeOption {
	return func(o *runtimeOptions) {
		o.streams = true
	}
}

// Runtime holds the collaborators shared by every client of a command.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Executor ports.Executor
	Store    ports.ResultStore
	Locker   ports.DistributedLocker
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Streams  *httpAdapter.StreamManager
	Stitcher *animation.Stitcher

	hooks   domain.LifecycleHooks
	mu      sync.Mutex
	clients map[string]*scadwrap.Client
	closers []func() error
}

// NewRuntime wires the executor, result store, locker and observability
// according to cfg.
func NewRuntime(cfg *config.Config, logger *slog.Logger, opts ...RuntimeOption) (*Runtime, error) {
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		clients:  make(map[string]*scadwrap.Client),
	}

	// 1. Executor
	rt.Executor = o.exec
	if rt.Executor == nil {
		runnerOpts := []process.RunnerOption{process.WithLogger(logger)}
		if o.echo != nil {
			runnerOpts = append(runnerOpts, process.WithEcho(o.echo))
		}
		rt.Executor = process.NewRunner(runnerOpts...)
	}
	rt.Stitcher = animation.NewStitcher(rt.Executor, animation.WithLogger(logger))

	// 2. Persistence
	switch cfg.Store.Driver {
	case config.StoreMemory:
		rt.Store = memory.NewStore()
	case config.StoreFile:
		rt.Store = file.NewStore(cfg.Store.Dir)
	case config.StoreRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix+"result:"),
			redis.WithTTL(cfg.Store.TTL),
		)
		rt.Store = store
		rt.closers = append(rt.closers, store.Close)
		if cfg.Lock.Enabled {
			rt.Locker = redis.NewLocker(store.Client(), rc.Prefix+"lock:")
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	store, err := wrapStore(rt.Store, cfg.Store)
	if err != nil {
		return nil, err
	}
	rt.Store = store

	// 3. Observability
	rt.Metrics = observability.NewMetrics(rt.Registry)
	rt.hooks = rt.Metrics.Hooks().Merge(observability.LoggingHooks(logger))
	if o.streams {
		rt.Streams = httpAdapter.NewStreamManager()
		rt.hooks = rt.hooks.Merge(rt.Streams.Hooks())
	}

	logger.Debug("Runtime ready", "store", cfg.Store.Driver, "lock", rt.Locker != nil, "executable", cfg.OpenSCAD.Executable)
	return rt, nil
}

// wrapStore adds redaction and encryption when configured.
func wrapStore(store ports.ResultStore, cfg config.StoreConfig) (ports.ResultStore, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactionMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if len(cfg.EncryptionKeys) > 0 {
		keys, err := middleware.ParseKeys(cfg.EncryptionKeys...)
		if err != nil {
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), nil
}

// Client returns the client for model, creating it on first use so the
// definition cache is shared between calls.
func (rt *Runtime) Client(model string) (*scadwrap.Client, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if c, ok := rt.clients[model]; ok {
		return c, nil
	}

	clientOpts := []scadwrap.Option{
		scadwrap.WithLogger(rt.Logger),
		scadwrap.WithLifecycleHooks(rt.hooks),
		scadwrap.WithResultStore(rt.Store),
	}
	if rt.Locker != nil {
		clientOpts = append(clientOpts, scadwrap.WithLocker(rt.Locker, rt.Config.Lock.TTL))
	}
	if rt.Config.Strict {
		clientOpts = append(clientOpts, scadwrap.WithStrictParameters())
	}

	c, err := scadwrap.New(model, rt.Config.OpenSCAD, rt.Executor, clientOpts...)
	if err != nil {
		return nil, err
	}
	rt.clients[model] = c
	return c, nil
}

// Close releases the store connections.
func (rt *Runtime) Close() error {
	var firstErr error
	for _, closer := range rt.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
