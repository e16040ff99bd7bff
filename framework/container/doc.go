// Package container provides the service container: named services that are
// built on first access, with singleton caching, aliases, wildcard lookup and
// circular dependency detection.
//
// # Registering
//
//	c := container.New()
//
//	// A recipe: constructor arguments and post-construction calls.
//	c.Define("database", newDatabase).
//	    Args(container.Param("db.dsn", "")).
//	    Call("Init")
//
//	// A recipe that builds a new value on every Get.
//	c.Define("email", newEmail).MultiInstance()
//
//	// Factories receive a container handle carrying the resolution stack.
//	c.Singleton("auth", func(c *container.Container) (any, error) {
//	    db, err := c.Get("database")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return newAuth(db.(*Database)), nil
//	})
//
//	// Built values and aliases.
//	c.Set("kernel", app)
//	c.Set("template.engine", "view")
//
// # Resolving
//
//	db, err := c.Get("database")          // (nil, nil) when not registered
//	exts, err := c.GetMatching("twig.extension.*")
//	routes := container.Resolve[*routing.Table](c, "routes")
//
// A definition whose arguments lead back to itself fails with a
// *CircularDependencyError (errors.Is(err, container.ErrCircularDependency)).
// The container stays usable afterwards and a failed build is retried on
// the next Get.
//
// # Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&BlogProvider{})
//	err := registry.Boot()
package container
