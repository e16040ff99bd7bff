package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrCircularImport is returned when a settings file imports itself,
// directly or through other files.
var ErrCircularImport = errors.New("config: circular import")

var envToken = regexp.MustCompile(`^%([a-zA-Z0-9_]+)%$`)

// Reader is the read side of the settings store, as used by the container
// to resolve ConfigRef arguments.
type Reader interface {
	Get(name string, def any) any
}

// ── Settings ──────────────────────────────────────────────────────────────────

// Settings is a flat key/value view of one or more YAML files.
//
//	database:
//	  host: localhost
//	  password: "%DB_PASSWORD%"
//
// is stored as
//
//	database.host     → "localhost"
//	database.password → value of $DB_PASSWORD (or "%DB_PASSWORD%" when unset)
//	database.*        → map[string]any{"host": ..., "password": ...}
//
// Keys are lower-cased. A file may pull in others with "import: other.yml"
// or a list under "import"; imports load first so the importing file wins.
type Settings struct {
	mu      sync.RWMutex
	all     map[string]any
	loading map[string]bool
	lookup  func(string) (string, bool)
}

// NewSettings creates an empty store that remaps %NAME% values from the
// process environment.
func NewSettings() *Settings {
	return &Settings{
		all:     make(map[string]any),
		loading: make(map[string]bool),
		lookup:  os.LookupEnv,
	}
}

// LoadSettings creates a store from path.
func LoadSettings(path string) (*Settings, error) {
	s := NewSettings()
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value stored under name, or def. Names are
// case-insensitive.
func (s *Settings) Get(name string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.all[strings.ToLower(name)]; ok {
		return v
	}
	return def
}

// String returns the value under name formatted as a string, or def.
func (s *Settings) String(name, def string) string {
	v := s.Get(name, nil)
	if v == nil {
		return def
	}
	return fmt.Sprint(v)
}

// Int returns the value under name as an int, or def when it is missing or
// not a number.
func (s *Settings) Int(name string, def int) int {
	switch v := s.Get(name, nil).(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Bool returns the value under name as a bool, or def.
func (s *Settings) Bool(name string, def bool) bool {
	switch v := s.Get(name, nil).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration parses the value under name ("90s", "5m"), or returns def.
func (s *Settings) Duration(name string, def time.Duration) time.Duration {
	if v, ok := s.Get(name, nil).(string); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Set stores value under name.
func (s *Settings) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all[strings.ToLower(name)] = value
}

// Has reports whether name is set.
func (s *Settings) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.all[strings.ToLower(name)]
	return ok
}

// Remove deletes name.
func (s *Settings) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.all, strings.ToLower(name))
}

// Keys returns every key in sorted order.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.all))
	for k := range s.all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load merges the YAML file at path into the store.
func (s *Settings) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(path)
}

func (s *Settings) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s.loading[abs] {
		return fmt.Errorf("%w: %s", ErrCircularImport, path)
	}
	s.loading[abs] = true
	defer delete(s.loading, abs)

	b, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// anything that is not a mapping counts as empty
	var content map[string]any
	if err := yaml.Unmarshal(b, &content); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
		content = nil
	}

	flat := make(map[string]any)
	s.flatten(content, "", flat)

	for _, imp := range imports(flat) {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(filepath.Dir(abs), imp)
		}
		if err := s.load(imp); err != nil {
			return err
		}
	}

	for k, v := range flat {
		s.all[k] = merge(s.all[k], v)
	}
	return nil
}

func imports(flat map[string]any) []string {
	if v, ok := flat["import"]; ok {
		return []string{fmt.Sprint(v)}
	}
	list, ok := flat["import.*"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// flatten writes every leaf of from into flat under its dotted path, plus a
// "path.*" entry holding each subtree. It returns from with keys lower-cased
// and values remapped.
func (s *Settings) flatten(from any, path string, flat map[string]any) any {
	join := func(key string) string {
		key = strings.ToLower(key)
		if path == "" {
			return key
		}
		return path + "." + key
	}

	switch node := from.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, v := range node {
			out[strings.ToLower(k)] = s.flattenValue(v, join(k), flat)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, v := range node {
			key := fmt.Sprint(k)
			out[strings.ToLower(key)] = s.flattenValue(v, join(key), flat)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, v := range node {
			out[i] = s.flattenValue(v, join(strconv.Itoa(i)), flat)
		}
		return out
	default:
		return s.remap(from)
	}
}

func (s *Settings) flattenValue(v any, path string, flat map[string]any) any {
	switch v.(type) {
	case map[string]any, map[any]any, []any:
		sub := s.flatten(v, path, flat)
		flat[path+".*"] = sub
		return sub
	default:
		val := s.remap(v)
		flat[path] = val
		return val
	}
}

// remap swaps a "%NAME%" string for $NAME, then $REDIRECT_NAME, leaving it
// unchanged when neither is set.
func (s *Settings) remap(v any) any {
	str, ok := v.(string)
	if !ok {
		return v
	}
	m := envToken.FindStringSubmatch(str)
	if m == nil {
		return v
	}
	if env, ok := s.lookup(m[1]); ok {
		return env
	}
	if env, ok := s.lookup("REDIRECT_" + m[1]); ok {
		return env
	}
	return v
}

// merge combines subtree maps key by key; anything else is replaced.
func merge(old, updated any) any {
	o, ok1 := old.(map[string]any)
	u, ok2 := updated.(map[string]any)
	if !ok1 || !ok2 {
		return updated
	}
	out := make(map[string]any, len(o)+len(u))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range u {
		out[k] = merge(out[k], v)
	}
	return out
}
