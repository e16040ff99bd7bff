package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Redis shares cached responses between processes.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. Default: "neatbox:".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// NewRedis creates a cache on client. The client is not closed by the cache.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "neatbox:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(p *routing.CachePolicy) string { return r.prefix + p.Key }

func (r *Redis) Get(ctx context.Context, p *routing.CachePolicy) (*gohttp.Response, bool, error) {
	b, err := r.client.Get(ctx, r.key(p)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get %s: %w", p.Key, err)
	}

	res, err := decode(b)
	if err != nil {
		return nil, false, fmt.Errorf("cache: decoding %s: %w", p.Key, err)
	}
	return res, true, nil
}

func (r *Redis) Put(ctx context.Context, p *routing.CachePolicy, res *gohttp.Response) error {
	b, err := encode(res)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", p.Key, err)
	}
	if err := r.client.Set(ctx, r.key(p), b, p.Duration).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", p.Key, err)
	}
	return nil
}
