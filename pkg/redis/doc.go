// Package redis connects to Redis and exposes it as a configuration cache.
//
// Connect retries the initial ping according to Config. NewCache adapts the
// client to cache.Cache so notification configuration can be shared between
// dispatcher instances. Healthcheck plugs into the readiness endpoint.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	c := redis.NewCache(client, cfg.KeyPrefix)
package redis
