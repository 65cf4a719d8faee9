package detectkit

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/mongo"
	"github.com/dmitrymomot/detectkit/pkg/pg"
	"github.com/dmitrymomot/detectkit/pkg/redis"
)

// backend is an opened storage with its probe and teardown.
type backend struct {
	storage     kvstore.Storage
	healthcheck func(context.Context) error
	close       func(context.Context) error
}

func nopProbe(context.Context) error { return nil }

func openStorage(ctx context.Context, cfg Config, log *slog.Logger) (backend, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Storage))
	log = log.With(logger.Component("storage"), slog.String("backend", kind))

	switch kind {
	case StorageMemory:
		return backend{storage: kvstore.NewMemory(), healthcheck: nopProbe, close: nopProbe}, nil

	case StorageSQLite, "":
		db, err := kvstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return backend{}, errors.Join(ErrOpenStorage, err)
		}
		log.DebugContext(ctx, "sqlite storage opened", slog.String("path", cfg.SQLitePath))
		return backend{
			storage:     db,
			healthcheck: db.Healthcheck,
			close:       func(context.Context) error { return db.Close() },
		}, nil

	case StorageRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return backend{}, errors.Join(ErrOpenStorage, err)
		}
		return backend{
			storage:     redis.NewStorage(client, redis.WithKeyPrefix(cfg.Redis.KeyPrefix)),
			healthcheck: redis.Healthcheck(client),
			close:       func(context.Context) error { return client.Close() },
		}, nil

	case StoragePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return backend{}, errors.Join(ErrOpenStorage, err)
		}
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			pool.Close()
			return backend{}, errors.Join(ErrOpenStorage, err)
		}
		return backend{
			storage:     pg.NewStorage(pool, cfg.Postgres.Namespace),
			healthcheck: pg.Healthcheck(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case StorageMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return backend{}, errors.Join(ErrOpenStorage, err)
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return backend{
			storage:     mongo.NewStorage(coll),
			healthcheck: mongo.Healthcheck(client),
			close:       client.Disconnect,
		}, nil
	}

	return backend{}, errors.Join(ErrUnknownStorage, errors.New(cfg.Storage))
}
