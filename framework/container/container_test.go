package container_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-neatbox/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type database struct {
	dsn   string
	ready bool
	log   []string
}

func (d *database) Init() { d.ready = true }

func (d *database) Use(names ...string) { d.log = append(d.log, names...) }

func (d *database) Migrate(table string) error {
	if table == "" {
		return errors.New("no table")
	}
	d.log = append(d.log, "migrated "+table)
	return nil
}

type repository struct {
	db *database
}

type settings map[string]any

func (s settings) Get(name string, def any) any {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

func countingConstructor(counter *int) container.Constructor {
	return func(args ...any) (any, error) {
		*counter++
		return &database{}, nil
	}
}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestGet_UnknownIsNil(t *testing.T) {
	c := container.New()

	got, err := c.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_ContainerRegistersItself(t *testing.T) {
	c := container.New()
	assert.Same(t, c, c.MustGet("container"))
}

func TestGet_InstanceReturnedUnchanged(t *testing.T) {
	c := container.New()
	db := &database{dsn: "mem"}
	c.Set("database", db)

	got, err := c.Get("database")
	require.NoError(t, err)
	assert.Same(t, db, got)
}

func TestGet_SingletonBuiltOnce(t *testing.T) {
	c := container.New()
	calls := 0
	c.Define("database", countingConstructor(&calls))

	assert.False(t, c.Resolved("database"))

	first, err := c.Get("database")
	require.NoError(t, err)
	second, err := c.Get("database")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Resolved("database"))
}

func TestGet_MultiInstanceBuildsEveryTime(t *testing.T) {
	c := container.New()
	calls := 0
	c.Define("email", countingConstructor(&calls)).MultiInstance()

	first := c.MustGet("email")
	second := c.MustGet("email")

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
	assert.False(t, c.Resolved("email"))
}

func TestGet_AliasForwards(t *testing.T) {
	c := container.New()
	c.Define("view", func(args ...any) (any, error) { return &database{dsn: "view"}, nil })
	c.Set("template.engine", "view")
	c.Alias("renderer", "template.engine")

	assert.Same(t, c.MustGet("view"), c.MustGet("template.engine"))
	assert.Same(t, c.MustGet("view"), c.MustGet("renderer"))
}

func TestGet_InstanceMayBeAString(t *testing.T) {
	c := container.New()
	c.Instance("app.name", "neatbox")

	assert.Equal(t, "neatbox", c.MustGet("app.name"))
}

func TestGet_ArgumentsResolveReferencesAndConfig(t *testing.T) {
	c := container.New()
	c.Set("config", settings{"db.dsn": "sqlite://app.db"})
	c.Define("database", func(args ...any) (any, error) {
		return &database{dsn: args[0].(string)}, nil
	}).Args(container.Param("db.dsn", "none"))
	c.Define("users", func(args ...any) (any, error) {
		return &repository{db: args[0].(*database)}, nil
	}).Args(container.Ref("database")).MultiInstance()

	repo := container.Resolve[*repository](c, "users")
	assert.Equal(t, "sqlite://app.db", repo.db.dsn)
	assert.Same(t, c.MustGet("database"), repo.db)
}

func TestGet_ConfigDefaultWithoutConfigService(t *testing.T) {
	c := container.New()
	c.Define("database", func(args ...any) (any, error) {
		return &database{dsn: args[0].(string)}, nil
	}).Args(container.Param("db.dsn", "memory"))

	assert.Equal(t, "memory", container.Resolve[*database](c, "database").dsn)
}

func TestGet_CallsRunInOrder(t *testing.T) {
	c := container.New()
	c.Define("database", func(args ...any) (any, error) { return &database{}, nil }).
		Call("Init").
		Call("Use", "a", "b").
		Call("Migrate", "users")

	db := container.Resolve[*database](c, "database")
	assert.True(t, db.ready)
	assert.Equal(t, []string{"a", "b", "migrated users"}, db.log)
}

func TestGet_CallErrorPropagatesAndIsRetried(t *testing.T) {
	c := container.New()
	c.Define("database", func(args ...any) (any, error) { return &database{}, nil }).
		Call("Migrate", "")

	_, err := c.Get("database")
	require.EqualError(t, err, "no table")
	assert.False(t, c.Resolved("database"))

	c.Set("database", container.NewDefinition(func(args ...any) (any, error) { return &database{}, nil }).Call("Init"))
	got, err := c.Get("database")
	require.NoError(t, err)
	assert.True(t, got.(*database).ready)
}

func TestGet_UnknownMethodFails(t *testing.T) {
	c := container.New()
	c.Define("database", func(args ...any) (any, error) { return &database{}, nil }).Call("Explode")

	_, err := c.Get("database")
	assert.ErrorContains(t, err, "has no method Explode")
}

func TestGet_ConstructorErrorUnchanged(t *testing.T) {
	boom := errors.New("boom")
	c := container.New()
	c.Define("database", func(args ...any) (any, error) { return nil, boom })
	c.Define("users", func(args ...any) (any, error) { return &repository{}, nil }).Args(container.Ref("database"))

	_, err := c.Get("users")
	assert.Same(t, boom, err)
}

// ── Circular dependencies ─────────────────────────────────────────────────────

func TestGet_DirectCycle(t *testing.T) {
	c := container.New()
	c.Define("a", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("a"))

	_, err := c.Get("a")
	require.ErrorIs(t, err, container.ErrCircularDependency)

	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "a", cycle.Name)
	assert.Equal(t, []string{"a", "a"}, cycle.Chain)
}

func TestGet_TransitiveCycleLeavesContainerUsable(t *testing.T) {
	c := container.New()
	c.Define("a", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("b"))
	c.Define("b", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("c"))
	c.Define("c", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("a"))
	c.Define("d", func(args ...any) (any, error) { return &database{}, nil })

	_, err := c.Get("a")
	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycle.Chain)

	got, err := c.Get("d")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// the same definition fails the same way again instead of being stuck
	_, err = c.Get("b")
	assert.ErrorIs(t, err, container.ErrCircularDependency)
}

func TestGet_CycleThroughFactory(t *testing.T) {
	c := container.New()
	c.Singleton("a", func(c *container.Container) (any, error) { return c.Get("b") })
	c.Singleton("b", func(c *container.Container) (any, error) { return c.Get("a") })

	_, err := c.Get("a")
	assert.ErrorIs(t, err, container.ErrCircularDependency)
}

func TestGet_AliasCycle(t *testing.T) {
	c := container.New()
	c.Set("a", "b")
	c.Set("b", "a")

	_, err := c.Get("a")
	assert.ErrorIs(t, err, container.ErrCircularDependency)
}

func TestGet_DiamondIsNotACycle(t *testing.T) {
	c := container.New()
	c.Define("db", func(args ...any) (any, error) { return &database{}, nil })
	c.Define("left", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("db"))
	c.Define("right", func(args ...any) (any, error) { return args[0], nil }).Args(container.Ref("db"))
	c.Define("top", func(args ...any) (any, error) { return args, nil }).Args(container.Ref("left"), container.Ref("right"))

	top, err := c.Get("top")
	require.NoError(t, err)
	pair := top.([]any)
	assert.Same(t, pair[0], pair[1])
}

// ── Bind / Singleton ──────────────────────────────────────────────────────────

func TestBindAndSingleton(t *testing.T) {
	c := container.New()
	c.Bind("transient", func(c *container.Container) (any, error) { return &database{}, nil })
	c.Singleton("shared", func(c *container.Container) (any, error) { return &database{}, nil })

	assert.NotSame(t, c.MustGet("transient"), c.MustGet("transient"))
	assert.Same(t, c.MustGet("shared"), c.MustGet("shared"))
}

func TestSingleton_ConcurrentGetSeesOneIdentity(t *testing.T) {
	c := container.New()
	c.Singleton("shared", func(c *container.Container) (any, error) { return &database{}, nil })

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.MustGet("shared")
		}(i)
	}
	wg.Wait()

	final := c.MustGet("shared")
	for _, r := range results {
		assert.Same(t, final, r)
	}
}

// ── GetMatching ───────────────────────────────────────────────────────────────

func TestGetMatching_Wildcard(t *testing.T) {
	c := container.New()
	c.Instance("twig.extension.routing", "routing")
	c.Instance("twig.extension.forms", "forms")
	c.Instance("twig.extension.deep.nested", "nested")
	c.Instance("other.extension.x", "x")

	got, err := c.GetMatching("twig.extension.*")
	require.NoError(t, err)
	assert.Equal(t, []any{"routing", "forms"}, got)
}

func TestGetMatching_OverwriteKeepsRegistrationOrder(t *testing.T) {
	c := container.New()
	c.Instance("ext.a", "a1")
	c.Instance("ext.b", "b")
	c.Instance("ext.a", "a2")

	got, err := c.GetMatching("ext.*")
	require.NoError(t, err)
	assert.Equal(t, []any{"a2", "b"}, got)
}

func TestGetMatching_Literal(t *testing.T) {
	c := container.New()
	c.Instance("cache", "null")

	got, err := c.GetMatching("cache")
	require.NoError(t, err)
	assert.Equal(t, []any{"null"}, got)

	got, err = c.GetMatching("missing")
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, got)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func TestForgetAndNames(t *testing.T) {
	c := container.New()
	c.Instance("a", 1)
	c.Instance("b", 2)
	c.Forget("a")

	assert.False(t, c.Has("a"))
	assert.Equal(t, []string{"container", "b"}, c.Names())
}

func TestAfterResolving(t *testing.T) {
	c := container.New()
	c.Define("database", func(args ...any) (any, error) { return &database{}, nil })

	var seen []string
	c.AfterResolving(func(name string, _ any) { seen = append(seen, name) })

	c.MustGet("database")
	c.MustGet("database")
	assert.Equal(t, []string{"database"}, seen)
}

func TestResolveHelpers(t *testing.T) {
	c := container.New()
	c.Instance("n", 42)

	assert.Equal(t, 42, container.Resolve[int](c, "n"))
	assert.Panics(t, func() { container.Resolve[string](c, "n") })
	assert.Panics(t, func() { c.MustGet("missing") })

	_, ok := container.TryResolve[string](c, "n")
	assert.False(t, ok)
	v, ok := container.TryResolve[int](c, "n")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
