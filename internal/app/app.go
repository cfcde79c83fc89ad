// Package app wires the registry, node library, tracking store and llm
// cache from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/llm"
	"github.com/smallnest/hypernodes/log"
	"github.com/smallnest/hypernodes/pipelines"
	"github.com/smallnest/hypernodes/tracking"
	"github.com/smallnest/hypernodes/tracking/memory"
	"github.com/smallnest/hypernodes/tracking/postgres"
	"github.com/smallnest/hypernodes/tracking/redis"
	"github.com/smallnest/hypernodes/tracking/sqlite"
)

// App holds the services shared by every command.
type App struct {
	Config    Config
	Logger    log.Logger
	Registry  *dataflow.ModuleRegistry
	Library   *hypernode.Library
	Factories hp.Factories
	// Store is nil when tracking is disabled
	Store tracking.Store
	// Cache is nil when llm caching is disabled
	Cache llm.Cache

	closers []func() error
}

// Option configures New.
type Option func(*App)

// WithLogger sets the logger instead of a golog logger at the configured level.
func WithLogger(l log.Logger) Option {
	return func(a *App) { a.Logger = l }
}

// WithStore sets the tracking store instead of opening the configured one.
func WithStore(s tracking.Store) Option {
	return func(a *App) { a.Store = s }
}

// WithFactory replaces the factory of kind.
func WithFactory(kind string, f hp.FactoryFunc) Option {
	return func(a *App) { a.Factories[kind] = f }
}

// New validates cfg and opens the configured backends.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Factories: hp.Factories{}}
	for _, opt := range opts {
		opt(a)
	}
	// Factories set by options win over the defaults below
	overrides := maps.Clone(a.Factories)

	if a.Logger == nil {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.Logger = log.NewGologLoggerWithLevel("[hypernodes] ", level)
	}

	reg, err := pipelines.Registry()
	if err != nil {
		return nil, err
	}
	a.Registry = reg

	if a.Store == nil {
		if err := a.openStore(ctx); err != nil {
			return nil, err
		}
	}
	a.openCache()

	a.Factories = pipelines.Factories(pipelines.Deps{
		Providers: a.providers(),
		Cache:     a.Cache,
		Store:     a.Store,
		Logger:    a.Logger,
	})
	maps.Copy(a.Factories, overrides)

	a.Library = hypernode.NewLibrary(cfg.NodesDir, reg,
		hypernode.WithFactories(a.Factories),
		hypernode.WithLogger(a.Logger),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Tracking {
	case TrackingMemory:
		a.Store = memory.NewMemoryRunStore()
	case TrackingSQLite:
		s, err := sqlite.NewSqliteRunStore(sqlite.SqliteOptions{Path: cfg.SQLitePath})
		if err != nil {
			return fmt.Errorf("open sqlite tracking store: %w", err)
		}
		a.Store = s
		a.closers = append(a.closers, s.Close)
	case TrackingRedis:
		s := redis.NewRedisRunStore(redis.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.RunTTL,
		})
		a.Store = s
		a.closers = append(a.closers, s.Close)
	case TrackingPostgres:
		s, err := postgres.NewPostgresRunStore(ctx, postgres.PostgresOptions{ConnString: cfg.PostgresURL})
		if err != nil {
			return fmt.Errorf("open postgres tracking store: %w", err)
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return fmt.Errorf("init postgres tracking store: %w", err)
		}
		a.Store = s
		a.closers = append(a.closers, func() error { s.Close(); return nil })
	}
	if a.Store != nil {
		a.Logger.Debug("tracking runs in %s", cfg.Tracking)
	}
	return nil
}

func (a *App) openCache() {
	cfg := a.Config
	switch cfg.LLMCache {
	case CacheMemory:
		a.Cache = llm.NewMemoryCache()
	case CacheRedis:
		c := llm.NewRedisCache(llm.RedisCacheOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.LLMCacheTTL,
		})
		a.Cache = c
		a.closers = append(a.closers, c.Close)
	}
}

func (a *App) providers() map[string]llm.Options {
	cfg := a.Config
	return map[string]llm.Options{
		llm.ProviderOpenAI:    {APIKey: cfg.OpenAIKey, BaseURL: cfg.OpenAIBaseURL},
		llm.ProviderAnthropic: {APIKey: cfg.AnthropicKey},
		llm.ProviderAzure:     {APIKey: cfg.AzureKey, BaseURL: cfg.AzureEndpoint, APIVersion: cfg.AzureAPIVersion},
		llm.ProviderEcho:      {},
	}
}

// Instantiate loads the named node and instantiates its inputs.
func (a *App) Instantiate(ctx context.Context, name string, selections, overrides map[string]any) (*hypernode.Node, error) {
	node, err := a.Library.Load(name)
	if err != nil {
		return nil, err
	}
	if err := node.InstantiateInputs(ctx, selections, overrides, false); err != nil {
		return nil, err
	}
	return node, nil
}

// Params lists the parameters of the named node without building anything.
func (a *App) Params(ctx context.Context, name string, selections, overrides map[string]any) ([]hp.ParamSpec, error) {
	node, err := a.Library.Load(name)
	if err != nil {
		return nil, err
	}
	return hp.Params(ctx, node.Config(),
		hp.WithSelections(selections),
		hp.WithOverrides(overrides),
		hp.WithResolver(a.Library),
		hp.WithLogger(a.Logger),
	)
}

// Export saves the built-in nodes into the nodes folder.
func (a *App) Export() error {
	return pipelines.Export(a.Library)
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for _, c := range slices.Backward(a.closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
