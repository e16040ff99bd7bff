package providers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/cache"
	"github.com/km-arc/go-neatbox/framework/config"
	"github.com/km-arc/go-neatbox/framework/container"
	"github.com/km-arc/go-neatbox/framework/events"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/logging"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Core returns the providers every application needs, in registration
// order.
func Core(cfg *config.Config, logger *zap.Logger) []container.ServiceProvider {
	return []container.ServiceProvider{
		&ConfigServiceProvider{Config: cfg},
		&LoggingServiceProvider{Env: cfg.App.Env, Logger: logger},
		&EventServiceProvider{},
		&RoutingServiceProvider{File: cfg.Paths.Routes},
		&ViewServiceProvider{Dir: cfg.Paths.Views},
		&CacheServiceProvider{Cache: cfg.Cache, Redis: cfg.Redis},
		&SessionServiceProvider{},
	}
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the process configuration and the settings
// store.
//
// Bound abstracts:
//   - "app.config"    → *config.Config
//   - "config"        → *config.Settings (read by container.Param arguments)
//   - "configuration" → alias of "config"
//
// The settings file is optional; a missing file gives an empty store.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	app.Instance("app.config", cfg)
	app.Singleton("config", func(c *container.Container) (any, error) {
		settings := config.NewSettings()
		if cfg.Paths.Settings == "" {
			return settings, nil
		}
		if err := settings.Load(cfg.Paths.Settings); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return settings, nil
			}
			return nil, err
		}
		return settings, nil
	})
	app.Alias("configuration", "config")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds "logger" → *zap.Logger. A preset Logger wins
// over one built for Env.
type LoggingServiceProvider struct {
	container.BaseProvider
	Env    string
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	if p.Logger != nil {
		app.Instance("logger", p.Logger)
		return
	}
	env := p.Env
	app.Singleton("logger", func(c *container.Container) (any, error) {
		return logging.New(env), nil
	})
}

// ── EventServiceProvider ──────────────────────────────────────────────────────

// EventServiceProvider binds "event-dispatcher" → *events.Dispatcher.
type EventServiceProvider struct {
	container.BaseProvider
}

func (p *EventServiceProvider) Register(app *container.Container) {
	app.Singleton("event-dispatcher", func(c *container.Container) (any, error) {
		logger, err := resolve[*zap.Logger](c, "logger")
		if err != nil {
			return nil, err
		}
		return events.NewDispatcher(logger), nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds "routes" → *routing.Table loaded from File.
// A missing file gives an empty table. Boot loads the table, so broken
// route files fail at startup.
type RoutingServiceProvider struct {
	File string
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	file := p.File
	app.Singleton("routes", func(c *container.Container) (any, error) {
		if file == "" {
			return routing.NewTable(), nil
		}
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			return routing.NewTable(), nil
		}
		return routing.LoadFile(file)
	})
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	_, err := app.Get("routes")
	return err
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider registers the template engine.
//
// Bound abstracts:
//   - "view"            → *gohttp.ViewEngine
//   - "template.engine" → alias of "view"
type ViewServiceProvider struct {
	container.BaseProvider
	Dir string // template directory, default: "./views"
	Ext string // file extension,    default: ".html"
}

func (p *ViewServiceProvider) Register(app *container.Container) {
	dir := p.Dir
	if dir == "" {
		dir = "./views"
	}
	ext := p.Ext
	if ext == "" {
		ext = ".html"
	}

	app.Singleton("view", func(c *container.Container) (any, error) {
		return gohttp.NewViewEngine(dir, ext), nil
	})
	app.Alias("template.engine", "view")
}

// ── CacheServiceProvider ──────────────────────────────────────────────────────

// CacheServiceProvider binds the output cache chosen by Cache.Driver.
//
// Bound abstracts:
//   - "redis"        → redis.UniversalClient (connects lazily)
//   - "output.cache" → cache.OutputCache (null | memory | redis)
type CacheServiceProvider struct {
	container.BaseProvider
	Cache config.CacheConfig
	Redis config.RedisConfig
}

func (p *CacheServiceProvider) Register(app *container.Container) {
	rc := p.Redis
	app.Singleton("redis", func(c *container.Container) (any, error) {
		return redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{rc.Addr},
			Password: rc.Password,
			DB:       rc.DB,
		}), nil
	})

	cc := p.Cache
	app.Singleton("output.cache", func(c *container.Container) (any, error) {
		switch cc.Driver {
		case "", "null":
			return cache.Null{}, nil
		case "memory":
			return cache.NewMemory(cc.Cleanup), nil
		case "redis":
			client, err := resolve[redis.UniversalClient](c, "redis")
			if err != nil {
				return nil, err
			}
			return cache.NewRedis(client), nil
		default:
			return nil, fmt.Errorf("providers: unknown cache driver %q", cc.Driver)
		}
	})
}

// ── SessionServiceProvider ────────────────────────────────────────────────────

// SessionServiceProvider binds "session" → a fresh gohttp.Session on every
// resolution; the pipeline attaches one to each request.
type SessionServiceProvider struct {
	container.BaseProvider
}

func (p *SessionServiceProvider) Register(app *container.Container) {
	app.Bind("session", func(c *container.Container) (any, error) {
		return gohttp.NewArraySession(), nil
	})
}

func resolve[T any](c *container.Container, name string) (T, error) {
	var zero T
	instance, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("providers: service [%s] is %T, want %T", name, instance, zero)
	}
	return typed, nil
}
