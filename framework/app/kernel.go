package app

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/cache"
	"github.com/km-arc/go-neatbox/framework/config"
	"github.com/km-arc/go-neatbox/framework/container"
	"github.com/km-arc/go-neatbox/framework/events"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/providers"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Version is the framework version.
const Version = "0.1.0"

const tracerName = "neatbox/app"

// Application is the kernel: it owns the service container, the provider
// registry and the handler registry, and turns requests into responses with
// Handle.
//
// It embeds the Container so services can be registered directly:
//
//	application := app.New(config.Load())
//	application.AddService("mailer", newMailer).Args(container.Param("mail.host", "localhost"))
//	application.Handlers.Register(app.Class("blog", "PostController"), newPostController)
//
// Request state never lives in the container, so one Application serves
// concurrent requests.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Handlers  *Registry

	cfg     *config.Config
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer

	bootMu sync.Mutex
}

// Option configures an Application.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	providers []container.ServiceProvider
}

// WithLogger uses l instead of a logger built for APP_ENV.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics uses m instead of metrics in a private registry.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer uses t instead of the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithProviders registers extra providers after the core ones.
func WithProviders(p ...container.ServiceProvider) Option {
	return func(o *options) { o.providers = append(o.providers, p...) }
}

// New creates the application and registers the core providers. Services
// are built lazily; call Boot (or just Handle) to finish start-up.
func New(cfg *config.Config, opts ...Option) *Application {
	if cfg == nil {
		cfg = config.Load()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	c := container.New()
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Handlers:  NewRegistry(),
		cfg:       cfg,
		metrics:   o.metrics,
		tracer:    o.tracer,
	}
	if a.metrics == nil {
		a.metrics = NewMetrics()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}

	c.Instance("kernel", a)
	c.Instance("handlers", a.Handlers)
	for _, p := range providers.Core(cfg, o.logger) {
		_ = a.Providers.Register(p)
	}
	for _, p := range o.providers {
		_ = a.Providers.Register(p)
	}

	a.logger = a.Logger()
	return a
}

// Register adds a ServiceProvider. Providers added after Boot are booted
// immediately.
func (a *Application) Register(provider container.ServiceProvider) error {
	a.bootMu.Lock()
	defer a.bootMu.Unlock()
	return a.Providers.Register(provider)
}

// Boot boots every provider once. Later calls are no-ops.
func (a *Application) Boot() error {
	a.bootMu.Lock()
	defer a.bootMu.Unlock()
	if a.Providers.Booted() {
		return nil
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.logger.Info("application booted",
		zap.String("env", a.cfg.App.Env),
		zap.Bool("debug", a.cfg.App.Debug),
		zap.Int("providers", len(a.Providers.Providers())),
	)
	return nil
}

// Booted reports whether every provider has booted.
func (a *Application) Booted() bool {
	a.bootMu.Lock()
	defer a.bootMu.Unlock()
	return a.Providers.Booted()
}

// ── Service registration ──────────────────────────────────────────────────────

// AddService registers name. Constructors and factories become singleton
// definitions (the returned *Definition takes Args and Call), a
// *container.Definition is registered as is, and anything else is stored
// as a ready instance (nil is returned).
func (a *Application) AddService(name string, ref any) *container.Definition {
	switch v := ref.(type) {
	case *container.Definition:
		a.Set(name, v)
		return v
	case container.Constructor:
		return a.Define(name, v)
	case func(...any) (any, error):
		return a.Define(name, v)
	case container.Factory:
		return a.Singleton(name, v)
	case func(*container.Container) (any, error):
		return a.Singleton(name, v)
	default:
		a.Instance(name, ref)
		return nil
	}
}

// AddServiceAlias makes name resolve to target.
func (a *Application) AddServiceAlias(name, target string) {
	a.Alias(name, target)
}

// AddModel registers a multi-instance service: every Get builds a new one.
func (a *Application) AddModel(name string, ctor container.Constructor) *container.Definition {
	return a.Define(name, ctor).MultiInstance()
}

// Listen adds an event listener to the "event-dispatcher" service.
func (a *Application) Listen(name string, l events.Listener) {
	a.Dispatcher().Listen(name, l)
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// Config returns the process configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Settings resolves the settings store.
func (a *Application) Settings() *config.Settings {
	return container.Resolve[*config.Settings](a.Container, "config")
}

// Routes resolves the route table.
func (a *Application) Routes() *routing.Table {
	return container.Resolve[*routing.Table](a.Container, "routes")
}

// Dispatcher resolves the event dispatcher.
func (a *Application) Dispatcher() *events.Dispatcher {
	return container.Resolve[*events.Dispatcher](a.Container, "event-dispatcher")
}

// Views resolves the template engine.
func (a *Application) Views() *gohttp.ViewEngine {
	return container.Resolve[*gohttp.ViewEngine](a.Container, "view")
}

// OutputCache resolves the output cache.
func (a *Application) OutputCache() cache.OutputCache {
	return container.Resolve[cache.OutputCache](a.Container, "output.cache")
}

// Logger resolves the logger, falling back to a no-op logger.
func (a *Application) Logger() *zap.Logger {
	if l, ok := container.TryResolve[*zap.Logger](a.Container, "logger"); ok {
		return l
	}
	return zap.NewNop()
}

// Metrics returns the dispatch metrics.
func (a *Application) Metrics() *Metrics { return a.metrics }

// URLFor generates the URL of a named route, prefixed with APP_URL when
// absolute.
func (a *Application) URLFor(name string, args map[string]any, absolute bool) (string, error) {
	routes, err := service[*routing.Table](a.Container, "routes")
	if err != nil {
		return "", err
	}
	if absolute {
		return routes.GenerateAbsolute(a.cfg.App.URL, name, args)
	}
	return routes.Generate(name, args)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
func (a *Application) Version() string     { return Version }
