// Package cache defines the byte-oriented Cache used to keep notification
// configuration close to the dispatcher, plus an in-process LRU implementation.
//
// The Redis implementation lives in pkg/redis and satisfies the same interface,
// so callers pick a backend at wiring time:
//
//	var c cache.Cache = cache.NewLRU(1024)
//	if redisClient != nil {
//	    c = redis.NewCache(redisClient, "notify:")
//	}
//
// Values are opaque bytes; encoding is up to the caller. A missing or expired
// key is reported as ErrMiss.
package cache
