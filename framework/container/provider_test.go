package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-neatbox/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalls int
	bootCalls     int
}

func (p *eagerProvider) Register(c *container.Container) {
	p.registerCalls++
	c.Instance("eager-svc", "eager")
}

func (p *eagerProvider) Boot(c *container.Container) error {
	p.bootCalls++
	return nil
}

// multiProvider registers multiple services and relies on BaseProvider.Boot.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(c *container.Container) {
	c.Instance("alpha", "α")
	c.Instance("beta", "β")
}

type failingProvider struct {
	container.BaseProvider
	failures  int // Boot fails this many times, then succeeds; <0 always fails
	bootCalls int
}

func (p *failingProvider) Register(c *container.Container) {}

func (p *failingProvider) Boot(c *container.Container) error {
	p.bootCalls++
	if p.failures < 0 || p.bootCalls <= p.failures {
		return errors.New("no database")
	}
	return nil
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_RegisterCalledImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.registerCalls)
	assert.Zero(t, p.bootCalls, "Boot() must wait for registry.Boot()")
}

func TestRegistry_BootIsIdempotent(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.False(t, reg.Booted())
	require.NoError(t, reg.Boot())
	require.NoError(t, reg.Boot())

	assert.True(t, reg.Booted())
	assert.Equal(t, 1, p.bootCalls)
}

func TestRegistry_DuplicateRegisterIgnored(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.registerCalls)
	assert.Len(t, reg.Providers(), 1)
}

func TestRegistry_MultipleProvidersResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&multiProvider{}))
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	assert.Equal(t, "α", c.MustGet("alpha"))
	assert.Equal(t, "β", c.MustGet("beta"))
	assert.Equal(t, "eager", c.MustGet("eager-svc"))
}

func TestRegistry_RegisterAfterBootBootsImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Boot())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.bootCalls)
}

func TestRegistry_BootErrorIsReturned(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&failingProvider{failures: -1}))

	err := reg.Boot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
}

func TestRegistry_FailedBootIsNotRemembered(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	before := &eagerProvider{}
	failing := &failingProvider{failures: -1}
	after := &eagerProvider{}
	for _, p := range []container.ServiceProvider{before, failing, after} {
		require.NoError(t, reg.Register(p))
	}

	require.Error(t, reg.Boot())
	require.Error(t, reg.Boot())

	assert.False(t, reg.Booted())
	assert.Equal(t, 1, before.bootCalls)
	assert.Equal(t, 2, failing.bootCalls)
	assert.Zero(t, after.bootCalls)
}

func TestRegistry_BootRetriesFromFailedProvider(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	before := &eagerProvider{}
	failing := &failingProvider{failures: 1}
	after := &eagerProvider{}
	for _, p := range []container.ServiceProvider{before, failing, after} {
		require.NoError(t, reg.Register(p))
	}

	require.Error(t, reg.Boot())
	require.NoError(t, reg.Boot())
	require.NoError(t, reg.Boot())

	assert.True(t, reg.Booted())
	assert.Equal(t, 1, before.bootCalls)
	assert.Equal(t, 2, failing.bootCalls)
	assert.Equal(t, 1, after.bootCalls)
}
