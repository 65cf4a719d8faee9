// Package redis connects to Redis and exposes it as a kvstore.Storage.
//
// Connect retries the initial connection according to Config, Healthcheck
// wraps PING for readiness probes, and Storage stores session values under a
// key prefix so one Redis database can hold several client profiles.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := redis.NewStorage(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//
// Storage implements kvstore.Incrementer with a Lua script, so anonymous usage
// is counted atomically even across processes.
package redis
