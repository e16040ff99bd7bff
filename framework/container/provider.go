package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registration of related services, the way a
// package of the application contributes to the container.
//
// Register is called as soon as the provider is added to a registry and must
// only register services. Boot is called once every provider is registered,
// so it may resolve anything.
//
//	type BlogProvider struct{ container.BaseProvider }
//
//	func (p *BlogProvider) Register(c *container.Container) {
//	    c.Define("blog.posts", newPostRepository).Args(container.Ref("database"))
//	}
type ServiceProvider interface {
	Register(c *Container)
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers providers and boots each of them exactly once.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	started    map[ServiceProvider]bool // providers whose Boot succeeded
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        c,
		registered: make(map[ServiceProvider]bool),
		started:    make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Providers added
// after Boot are booted immediately. Adding the same provider twice is a
// no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	provider.Register(r.app)
	r.providers = append(r.providers, provider)

	if r.booted {
		return r.boot(provider)
	}
	return nil
}

// Boot calls Boot on every registered provider, in registration order, and
// stops at the first error. A failed Boot leaves the registry unbooted: the
// next call retries from the provider that failed, skipping those already
// booted. Once every provider has booted, later calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	for _, provider := range r.providers {
		if r.started[provider] {
			continue
		}
		if err := r.boot(provider); err != nil {
			return err
		}
	}
	r.booted = true
	return nil
}

func (r *ProviderRegistry) boot(provider ServiceProvider) error {
	if err := provider.Boot(r.app); err != nil {
		return fmt.Errorf("container: booting %T: %w", provider, err)
	}
	r.started[provider] = true
	return nil
}

// Booted returns true once every provider has booted.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
