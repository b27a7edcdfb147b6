package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	appConfig  *Config
	registry   *registry.Registry
	config     *config.Model
	env        map[string]string
	models     modelstore.Loader
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration that cannot be loaded or names unknown callables is a fatal
// startup error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "data_sources", len(cfgModel.DataSources), "steps", len(cfgModel.Steps))

	if len(modules) == 0 {
		modules = coreModules(appConfig)
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "callables", len(reg.Refs()))

	if err := reg.ValidateRefs("config", configRefs(cfgModel)...); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	env := appConfig.Env
	if env == nil {
		env = config.ParseEnvVars()
	}

	store := modelstore.NewRootLoader(modelstore.RegistryFactory(reg), appConfig.Region)
	cache, err := modelstore.NewCache(store, appConfig.CacheSize)
	if err != nil {
		panic(fmt.Errorf("failed to create model cache: %w", err))
	}

	return &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		appConfig: appConfig,
		registry:  reg,
		config:    cfgModel,
		env:       env,
		models:    cache,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// configRefs lists every callable reference the configuration names.
func configRefs(m *config.Model) []string {
	refs := []string{m.SerializerRef()}
	for _, ds := range m.DataSources {
		refs = append(refs, ds.Sampler)
	}
	for _, s := range m.Steps {
		refs = append(refs, s.Stages...)
		refs = append(refs, s.Serializer, s.Transform)
	}
	return refs
}
