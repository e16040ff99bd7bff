package container

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ── Entries ───────────────────────────────────────────────────────────────────

type entryKind int

const (
	kindDefinition entryKind = iota
	kindInstance
	kindAlias
)

// entry is one slot of the container: a deferred recipe, a built value or
// an alias forwarding to another name.
type entry struct {
	kind     entryKind
	def      *Definition
	instance any
	alias    string
}

// store is the state shared by every handle onto the same container.
type store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // registration order, used by GetMatching

	afterResolving []func(name string, instance any)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container holds named services and builds them on first access.
//
// Values registered with Set fall into three groups:
//   - a *Definition is built lazily; singletons are swapped for their
//     instance after the first build
//   - a string (or Alias) forwards resolution to another name
//   - anything else is returned as-is
//
// Factories and constructors receive a Container handle that carries the
// current resolution stack, so a service that (directly or transitively)
// needs itself fails with a CircularDependencyError instead of recursing.
type Container struct {
	s     *store
	stack *resolution
}

// resolution is the set of names currently being built by one Get call.
type resolution struct {
	chain []string
}

func (r *resolution) has(name string) bool {
	if r == nil {
		return false
	}
	for _, n := range r.chain {
		if n == name {
			return true
		}
	}
	return false
}

func (r *resolution) push(name string) *resolution {
	next := &resolution{}
	if r != nil {
		next.chain = append(next.chain, r.chain...)
	}
	next.chain = append(next.chain, name)
	return next
}

// New creates an empty container. The container registers itself as
// "container".
func New() *Container {
	c := &Container{s: &store{entries: make(map[string]*entry)}}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Set registers name. A *Definition is built lazily, a string or Alias is an
// alias for another service, any other value is stored as a built instance.
// A previous registration for name is replaced but keeps its position in
// registration order.
//
//	c.Set("database", container.NewDefinition(newDatabase).Args(container.Param("db.dsn", "")))
//	c.Set("template.engine", "view")
//	c.Set("kernel", app)
func (c *Container) Set(name string, ref any) {
	switch v := ref.(type) {
	case *Definition:
		v.name = name
		c.put(name, &entry{kind: kindDefinition, def: v})
	case Alias:
		c.put(name, &entry{kind: kindAlias, alias: string(v)})
	case string:
		c.put(name, &entry{kind: kindAlias, alias: v})
	default:
		c.put(name, &entry{kind: kindInstance, instance: v})
	}
}

// Define registers a singleton definition built by ctor and returns it for
// further configuration.
//
//	c.Define("auth", newAuth).Args(container.Ref("auth.token"), container.Ref("event-dispatcher"))
func (c *Container) Define(name string, ctor Constructor) *Definition {
	def := NewDefinition(ctor)
	c.Set(name, def)
	return def
}

// Bind registers a transient factory: every Get builds a new value.
//
//	c.Bind("session", func(c *container.Container) (any, error) {
//	    return gohttp.NewArraySession(), nil
//	})
func (c *Container) Bind(name string, factory Factory) *Definition {
	def := newFactoryDefinition(factory).MultiInstance()
	c.Set(name, def)
	return def
}

// Singleton registers a factory whose result is cached after the first Get.
//
//	c.Singleton("output.cache", func(c *container.Container) (any, error) {
//	    return cache.NewMemory(time.Minute), nil
//	})
func (c *Container) Singleton(name string, factory Factory) *Definition {
	def := newFactoryDefinition(factory)
	c.Set(name, def)
	return def
}

// Instance registers a pre-built value, including plain strings.
func (c *Container) Instance(name string, instance any) {
	c.put(name, &entry{kind: kindInstance, instance: instance})
}

// Alias makes name resolve to target.
func (c *Container) Alias(name, target string) {
	if name == target {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", name))
	}
	c.put(name, &entry{kind: kindAlias, alias: target})
}

func (c *Container) put(name string, e *entry) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, exists := c.s.entries[name]; !exists {
		c.s.order = append(c.s.order, name)
	}
	c.s.entries[name] = e
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves name. Unknown names resolve to (nil, nil): callers treat that
// as "service absent". Construction errors are returned unchanged and are
// not remembered, so a later Get retries the build.
func (c *Container) Get(name string) (any, error) {
	c.s.mu.RLock()
	e, ok := c.s.entries[name]
	c.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	switch e.kind {
	case kindInstance:
		return e.instance, nil
	case kindAlias:
		if c.stack.has(name) {
			return nil, newCircularDependencyError(name, c.stack)
		}
		return c.with(name).Get(e.alias)
	}

	if c.stack.has(name) {
		return nil, newCircularDependencyError(name, c.stack)
	}

	instance, err := e.def.build(c.with(name))
	if err != nil {
		return nil, err
	}

	if e.def.singleton {
		instance = c.storeSingleton(name, e, instance)
	}
	c.fireAfterResolving(name, instance)
	return instance, nil
}

// with returns a handle whose resolution stack includes name.
func (c *Container) with(name string) *Container {
	return &Container{s: c.s, stack: c.stack.push(name)}
}

// storeSingleton swaps the definition for its instance. If another caller
// finished first, its instance wins so every caller sees one identity.
func (c *Container) storeSingleton(name string, built *entry, instance any) any {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	current, ok := c.s.entries[name]
	switch {
	case ok && current == built:
		c.s.entries[name] = &entry{kind: kindInstance, instance: instance}
	case ok && current.kind == kindInstance && current.instance != nil:
		return current.instance
	}
	return instance
}

// MustGet is like Get but panics on error or when name is not registered.
func (c *Container) MustGet(name string) any {
	instance, err := c.Get(name)
	if err != nil {
		panic(fmt.Sprintf("container: resolving [%s]: %v", name, err))
	}
	if instance == nil {
		panic(fmt.Sprintf("container: no service registered for [%s]", name))
	}
	return instance
}

// GetMatching resolves every service whose name matches pattern. A "*"
// stands for exactly one dot-free segment, so "twig.extension.*" matches
// "twig.extension.routing" but not "twig.extension.a.b". Results follow
// registration order. A pattern without "*" is a plain Get wrapped in a
// one-element slice, so an unregistered name gives []any{nil}.
func (c *Container) GetMatching(pattern string) ([]any, error) {
	if !strings.Contains(pattern, "*") {
		instance, err := c.Get(pattern)
		if err != nil {
			return nil, err
		}
		return []any{instance}, nil
	}

	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, "[^.]+") + "$")

	c.s.mu.RLock()
	names := make([]string, 0, len(c.s.order))
	for _, name := range c.s.order {
		if re.MatchString(name) {
			names = append(names, name)
		}
	}
	c.s.mu.RUnlock()

	matching := make([]any, 0, len(names))
	for _, name := range names {
		instance, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		matching = append(matching, instance)
	}
	return matching, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	_, ok := c.s.entries[name]
	return ok
}

// Resolved reports whether name currently holds a built instance.
func (c *Container) Resolved(name string) bool {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	e, ok := c.s.entries[name]
	return ok && e.kind == kindInstance
}

// Forget removes name.
func (c *Container) Forget(name string) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.entries[name]; !ok {
		return
	}
	delete(c.s.entries, name)
	for i, n := range c.s.order {
		if n == name {
			c.s.order = append(c.s.order[:i:i], c.s.order[i+1:]...)
			break
		}
	}
}

// Names returns the registered names in registration order.
func (c *Container) Names() []string {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return append([]string(nil), c.s.order...)
}

// AfterResolving registers a callback fired after a definition is built.
//
//	c.AfterResolving(func(name string, instance any) {
//	    logger.Debug("built", zap.String("service", name))
//	})
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.afterResolving = append(c.s.afterResolving, cb)
}

func (c *Container) fireAfterResolving(name string, instance any) {
	c.s.mu.RLock()
	cbs := c.s.afterResolving
	c.s.mu.RUnlock()
	for _, cb := range cbs {
		cb(name, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls MustGet and type-asserts the result.
//
//	// Instead of: routes := c.MustGet("routes").(*routing.Table)
//	// Write:      routes := container.Resolve[*routing.Table](c, "routes")
func Resolve[T any](c *Container, name string) T {
	instance := c.MustGet(name)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), name, instance))
	}
	return typed
}

// TryResolve is like Resolve but reports failure instead of panicking.
// An absent service, a build error or a type mismatch all return false.
func TryResolve[T any](c *Container, name string) (T, bool) {
	var zero T
	instance, err := c.Get(name)
	if err != nil || instance == nil {
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
