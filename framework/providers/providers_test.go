package providers

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/cache"
	"github.com/km-arc/go-neatbox/framework/config"
	"github.com/km-arc/go-neatbox/framework/container"
	"github.com/km-arc/go-neatbox/framework/events"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

func registry(t *testing.T, providers ...container.ServiceProvider) *container.Container {
	t.Helper()
	c := container.New()
	r := container.NewProviderRegistry(c)
	for _, p := range providers {
		require.NoError(t, r.Register(p))
	}
	require.NoError(t, r.Boot())
	return c
}

func TestConfigServiceProvider(t *testing.T) {
	cfg := &config.Config{Paths: config.PathConfig{Settings: "../config/testdata/base.yml"}}
	c := registry(t, &ConfigServiceProvider{Config: cfg})

	assert.Same(t, cfg, container.Resolve[*config.Config](c, "app.config"))
	settings := container.Resolve[*config.Settings](c, "config")
	assert.NotEmpty(t, settings.Keys())
	assert.Same(t, settings, container.Resolve[*config.Settings](c, "configuration"))
}

func TestConfigServiceProvider_MissingSettingsFile(t *testing.T) {
	cfg := &config.Config{Paths: config.PathConfig{Settings: "does/not/exist.yml"}}
	c := registry(t, &ConfigServiceProvider{Config: cfg})

	settings := container.Resolve[*config.Settings](c, "config")
	assert.Empty(t, settings.Keys())
}

func TestConfigServiceProvider_BrokenSettingsFile(t *testing.T) {
	cfg := &config.Config{Paths: config.PathConfig{Settings: "../config/testdata/broken.yml"}}
	c := registry(t, &ConfigServiceProvider{Config: cfg})

	_, err := c.Get("config")
	assert.Error(t, err)
}

func TestLoggingServiceProvider(t *testing.T) {
	c := registry(t, &LoggingServiceProvider{Env: "testing"})
	assert.NotNil(t, container.Resolve[*zap.Logger](c, "logger"))

	preset := zap.NewExample()
	c = registry(t, &LoggingServiceProvider{Env: "production", Logger: preset})
	assert.Same(t, preset, container.Resolve[*zap.Logger](c, "logger"))
}

func TestEventServiceProvider(t *testing.T) {
	c := registry(t, &LoggingServiceProvider{Env: "testing"}, &EventServiceProvider{})

	d := container.Resolve[*events.Dispatcher](c, "event-dispatcher")
	assert.Same(t, d, container.Resolve[*events.Dispatcher](c, "event-dispatcher"))
}

func TestEventServiceProvider_NeedsLogger(t *testing.T) {
	c := registry(t, &EventServiceProvider{})

	_, err := c.Get("event-dispatcher")
	assert.Error(t, err)
}

func TestRoutingServiceProvider(t *testing.T) {
	c := registry(t, &RoutingServiceProvider{File: "../app/testdata/routes.yml"})

	table := container.Resolve[*routing.Table](c, "routes")
	assert.Equal(t, 2, table.Len())
	assert.NotNil(t, table.Find("post_show"))
}

func TestRoutingServiceProvider_EmptyTable(t *testing.T) {
	for _, file := range []string{"", "missing/routes.yml"} {
		c := registry(t, &RoutingServiceProvider{File: file})
		assert.Equal(t, 0, container.Resolve[*routing.Table](c, "routes").Len(), file)
	}
}

func TestRoutingServiceProvider_BootFailsOnInvalidFile(t *testing.T) {
	c := container.New()
	r := container.NewProviderRegistry(c)
	require.NoError(t, r.Register(&RoutingServiceProvider{File: "../app/testdata/bad_routes.yml"}))

	assert.Error(t, r.Boot())
}

func TestViewServiceProvider(t *testing.T) {
	c := registry(t, &ViewServiceProvider{Dir: "../http/testdata/views"})

	view := container.Resolve[*gohttp.ViewEngine](c, "view")
	html, err := view.Render("home", map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Home</h1>\n", html)
	assert.Same(t, view, container.Resolve[*gohttp.ViewEngine](c, "template.engine"))
}

func TestCacheServiceProvider_Drivers(t *testing.T) {
	tests := []struct {
		driver string
		want   any
	}{
		{"", cache.Null{}},
		{"null", cache.Null{}},
		{"memory", &cache.Memory{}},
	}
	for _, tt := range tests {
		c := registry(t, &CacheServiceProvider{Cache: config.CacheConfig{Driver: tt.driver, Cleanup: time.Minute}})
		assert.IsType(t, tt.want, container.Resolve[cache.OutputCache](c, "output.cache"), tt.driver)
	}
}

func TestCacheServiceProvider_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := registry(t, &CacheServiceProvider{
		Cache: config.CacheConfig{Driver: "redis"},
		Redis: config.RedisConfig{Addr: mr.Addr()},
	})

	client := container.Resolve[redis.UniversalClient](c, "redis")
	require.NoError(t, client.Ping(t.Context()).Err())
	assert.IsType(t, &cache.Redis{}, container.Resolve[cache.OutputCache](c, "output.cache"))
}

func TestCacheServiceProvider_UnknownDriver(t *testing.T) {
	c := registry(t, &CacheServiceProvider{Cache: config.CacheConfig{Driver: "memcached"}})

	_, err := c.Get("output.cache")
	assert.ErrorContains(t, err, "memcached")
}

func TestSessionServiceProvider_FreshSessions(t *testing.T) {
	c := registry(t, &SessionServiceProvider{})

	first := container.Resolve[gohttp.Session](c, "session")
	second := container.Resolve[gohttp.Session](c, "session")
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestCore(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "testing"}, Cache: config.CacheConfig{Driver: "memory"}}
	c := registry(t, Core(cfg, nil)...)

	for _, name := range []string{"app.config", "config", "logger", "event-dispatcher", "routes", "view", "output.cache", "session"} {
		_, err := c.Get(name)
		assert.NoError(t, err, name)
	}
}
