// Package pg connects to PostgreSQL with pgx/v5 and exposes a table-backed
// kvstore.Storage.
//
// Connect opens a *pgxpool.Pool with retry, Migrate applies the embedded goose
// migrations that create the kv_entries table, and Storage reads and writes
// session values in that table, scoped by a namespace column so several
// client profiles can share one database.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	store := pg.NewStorage(pool, cfg.Namespace)
//
// Incr is a single upsert statement, so counting is atomic across processes.
package pg
