// Package cache holds the output cache backends: Null (the default),
// Memory (in process, go-cache) and Redis (shared, go-redis).
//
// Keys and lifetimes come from the matched route:
//
//	policy, ok := match.CachePolicy()
//	if ok {
//	    res, hit, err := outputCache.Get(ctx, policy)
//	}
package cache
