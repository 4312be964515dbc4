package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/vk/assetforge/internal/builder"
	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/hcl_adapter"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
	"github.com/vk/assetforge/internal/tracker"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	registry *registry.Registry
	content  *content.Content
	tracker  *tracker.Tracker

	listeners []events.Listener

	mu         sync.Mutex
	builder    *builder.Builder
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It builds an isolated
// logger and registry, registers modules (the built-in processors when none
// are given), loads the content description and hydrates the dependency
// cache.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register module %T: %w", mod, err)
		}
	}
	logger.Debug("All processor modules registered.", "count", reg.Len())

	c, err := hcl_adapter.NewLoader(reg).Load(ctx, cfg.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	if cfg.OutputPath != "" {
		out, err := filepath.Abs(cfg.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("invalid output path: %w", err)
		}
		c.OutputRoot = out
	}
	logger.Debug("Content loaded.", "name", c.Name, "assets", len(c.Assets), "bundles", len(c.Bundles), "source_root", c.SourceRoot, "output_root", c.OutputRoot)

	tr := tracker.Load(ctx, c.SourceRoot, c.OutputRoot, builder.CacheFile(c))

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		registry: reg,
		content:  c,
		tracker:  tr,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Content returns the loaded content description.
func (a *App) Content() *content.Content {
	return a.content
}

// AddListener attaches l to every subsequent build.
func (a *App) AddListener(l events.Listener) {
	a.listeners = append(a.listeners, l)
}

// Processors returns the descriptors of every registered processor.
func (a *App) Processors() []*processor.Descriptor {
	return a.registry.Descriptors()
}

func (a *App) newBuilder(l events.Listener) *builder.Builder {
	b := builder.New(a.content, a.registry, a.tracker, builder.Options{Force: a.config.Force, Listener: l})
	a.mu.Lock()
	a.builder = b
	a.mu.Unlock()
	return b
}

// currentBuilder returns the builder of the latest operation, if any.
func (a *App) currentBuilder() *builder.Builder {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.builder
}

// BuiltinProcessors returns the descriptors of the processors compiled into
// the binary, without loading any content.
func BuiltinProcessors() ([]*processor.Descriptor, error) {
	reg := registry.New()
	for _, mod := range coreModules {
		if err := mod.Register(reg); err != nil {
			return nil, err
		}
	}
	return reg.Descriptors(), nil
}
