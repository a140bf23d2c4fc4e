// Package redis connects to Redis with go-redis/v9.
//
// Connect retries until the server answers a PING; Healthcheck wraps a ping
// for readiness probes. The returned client backs cache.Redis, the shared
// lookaside cache used by the tenant registry.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	c := cache.NewRedis(client)
package redis
