package routing

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrRouteNotFound is returned when a named route does not exist.
var ErrRouteNotFound = errors.New("routing: route not found")

// NotFoundRoute is the name of the route used when nothing else matches.
const NotFoundRoute = "404"

// ── Table ─────────────────────────────────────────────────────────────────────

// Table is an ordered, named collection of routes. The first route that
// matches a request wins.
type Table struct {
	mu     sync.RWMutex
	routes []*Route
	byName map[string]int
}

// NewTable creates a table holding routes in order.
func NewTable(routes ...*Route) *Table {
	t := &Table{byName: make(map[string]int)}
	for _, r := range routes {
		t.Add(r)
	}
	return t
}

// Add appends r. A route with an existing name replaces the old one in
// place.
func (t *Table) Add(r *Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.byName[r.Name]; ok {
		t.routes[i] = r
		return
	}
	t.byName[r.Name] = len(t.routes)
	t.routes = append(t.routes, r)
}

// Find returns the named route, or nil.
func (t *Table) Find(name string) *Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i, ok := t.byName[name]; ok {
		return t.routes[i]
	}
	return nil
}

// Routes returns the routes in matching order.
func (t *Table) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// FindMatching returns the first route matching req, or nil when none does.
// A route whose pattern does not compile stops the search with its error.
func (t *Table) FindMatching(req Request) (*Match, error) {
	path := req.Path()
	for _, r := range t.Routes() {
		m, ok, err := r.Match(path, req)
		if err != nil {
			return nil, fmt.Errorf("routing: route %q: %w", r.Name, err)
		}
		if ok {
			return m, nil
		}
	}
	return nil, nil
}

// Generate builds the URL of the named route.
//
//	url, err := table.Generate("blog_show", map[string]any{"id": 42})
func (t *Table) Generate(name string, args map[string]any) (string, error) {
	r := t.Find(name)
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}
	return r.Generate(args), nil
}

// GenerateAbsolute prefixes the generated URL with base
// (e.g. "https://example.com").
func (t *Table) GenerateAbsolute(base, name string, args map[string]any) (string, error) {
	u, err := t.Generate(name, args)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + u, nil
}
