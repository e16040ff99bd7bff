package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Memory keeps responses in process. Entries are copied in and out, so
// callers may modify what they get back.
type Memory struct {
	items *gocache.Cache
}

// NewMemory creates an in-process cache that sweeps expired entries every
// cleanup interval.
func NewMemory(cleanup time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *Memory) Get(_ context.Context, p *routing.CachePolicy) (*gohttp.Response, bool, error) {
	v, ok := m.items.Get(p.Key)
	if !ok {
		return nil, false, nil
	}
	return v.(entry).response(), true, nil
}

func (m *Memory) Put(_ context.Context, p *routing.CachePolicy, res *gohttp.Response) error {
	m.items.Set(p.Key, newEntry(res), p.Duration)
	return nil
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (m *Memory) Len() int { return m.items.ItemCount() }

// Flush drops every entry.
func (m *Memory) Flush() { m.items.Flush() }
