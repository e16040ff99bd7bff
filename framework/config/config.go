package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the typed process configuration read from the environment.
// Application settings that belong to the site live in Settings instead.
type Config struct {
	App   AppConfig
	Paths PathConfig
	Cache CacheConfig
	Redis RedisConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	URL   string // base for absolute URLs
	Port  string
	Key   string

	// TrustProxies honours X-Forwarded-Proto from the peer. Enable only
	// behind a proxy that overwrites the header.
	TrustProxies bool
}

type PathConfig struct {
	Routes   string // YAML route table
	Settings string // YAML settings file; imports are relative to it
	Views    string // template directory
	Public   string // static files served under /assets; skipped when missing
}

type CacheConfig struct {
	Driver  string // null | memory | redis
	Cleanup time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "NeatBox"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
			URL:   env("APP_URL", "http://localhost"),
			Port:  env("APP_PORT", "8000"),
			Key:   env("APP_KEY", ""),

			TrustProxies: GetBool("TRUST_PROXIES", false),
		},
		Paths: PathConfig{
			Routes:   env("ROUTES_FILE", "config/routes.yml"),
			Settings: env("SETTINGS_FILE", "config/config.yml"),
			Views:    env("VIEWS_DIR", "views"),
			Public:   env("PUBLIC_DIR", "public"),
		},
		Cache: CacheConfig{
			Driver:  env("CACHE_DRIVER", "null"),
			Cleanup: envDuration("CACHE_CLEANUP", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     env("REDIS_ADDR", "127.0.0.1:6379"),
			Password: env("REDIS_PASSWORD", ""),
			DB:       GetInt("REDIS_DB", 0),
		},
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
