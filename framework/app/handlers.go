package app

import (
	"context"
	"sort"
	"sync"

	"github.com/km-arc/go-neatbox/framework/container"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// ── Handler contract ──────────────────────────────────────────────────────────

// Action serves one route. It returns a *gohttp.Response; anything else
// (nil included) goes to the kernel.missingresponse event.
type Action func(c *Context) (any, error)

// Actions maps action method names ("showAction") to actions.
type Actions map[string]Action

// Handler is a controller: a fresh one is built for every request.
type Handler interface {
	Actions() Actions
}

// HandlerFactory builds a Handler.
type HandlerFactory func() Handler

// ContainerAware handlers receive the container before Init and the action.
type ContainerAware interface {
	SetContainer(c *container.Container)
}

// Initializer handlers run Init before the action. Returning false skips the
// action; the response then has to come from a kernel.missingresponse
// listener.
type Initializer interface {
	Init(c *Context) (bool, error)
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry maps handler classes ("blog/controllers/PostController") to
// factories. It is filled at startup and only read while serving.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]HandlerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]HandlerFactory)}
}

// Class returns the registry key for a namespace and handler name, the same
// key routing.ParseHandlerSpec derives from "ns:Name:action".
func Class(namespace, name string) string {
	return namespace + "/controllers/" + name
}

// Register adds or replaces the factory for class.
//
//	registry.Register(app.Class("blog", "PostController"), func() app.Handler {
//	    return &PostController{}
//	})
func (r *Registry) Register(class string, f HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[class] = f
}

// Lookup returns the factory for class.
func (r *Registry) Lookup(class string) (HandlerFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[class]
	return f, ok
}

// Classes returns the registered classes, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for class := range r.factories {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// ── Context ───────────────────────────────────────────────────────────────────

// Context is what an action sees of the request being served.
type Context struct {
	ctx     context.Context
	Request *gohttp.Request
	Match   *routing.Match
	Spec    routing.HandlerSpec
	app     *Application
}

// Context returns the request context (carrying the dispatch span).
func (c *Context) Context() context.Context { return c.ctx }

// Arg returns a matched route argument.
func (c *Context) Arg(name string) string { return c.Match.Arguments.Get(name) }

// Args returns every matched route argument.
func (c *Context) Args() routing.Arguments { return c.Match.Arguments }

// Route returns the route being served.
func (c *Context) Route() *routing.Route { return c.Match.Route }

// App returns the application.
func (c *Context) App() *Application { return c.app }

// URLFor generates the URL of a named route.
func (c *Context) URLFor(name string, args map[string]any, absolute bool) (string, error) {
	return c.app.URLFor(name, args, absolute)
}
