package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
)

// Storage is a kvstore.Storage backed by the kv_entries table.
type Storage struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewStorage returns a Storage over pool. Keys are scoped by namespace.
func NewStorage(pool *pgxpool.Pool, namespace string) *Storage {
	if namespace == "" {
		namespace = "default"
	}
	return &Storage{pool: pool, namespace: namespace}
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := kvstore.ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if IsNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pg get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := kvstore.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO kv_entries (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		s.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("pg set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := kvstore.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("pg delete %q: %w", key, err)
	}
	return nil
}

// Incr increments the counter with a single upsert. A stored value that is not
// an integer restarts the count from zero.
func (s *Storage) Incr(ctx context.Context, key string) (int64, error) {
	if err := kvstore.ValidateKey(key); err != nil {
		return 0, err
	}
	var n int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO kv_entries (namespace, key, value) VALUES ($1, $2, '1')
		 ON CONFLICT (namespace, key)
		 DO UPDATE SET value = CASE
			WHEN btrim(kv_entries.value) ~ '^[-+]?[0-9]+$'
			THEN (btrim(kv_entries.value)::bigint + 1)::text
			ELSE '1'
		 END, updated_at = now()
		 RETURNING value::bigint`,
		s.namespace, key,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pg incr %q: %w", key, err)
	}
	return n, nil
}
