package store

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/db"
	"github.com/sells-group/dnc-processor/internal/resilience"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaLockID serializes concurrent schema bootstraps across processes.
const schemaLockID = 5550100

// PostgresStore wraps a pgx pool for one run.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres opens and pings a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := resilience.Do(ctx, resilience.ConnectRetryConfig(), pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewWithPool wraps an existing pool. Close does not close it.
func NewWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying pool for the batch writer.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// Close releases the pool if this store opened it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// EnsureSchema creates the destination tables if they are absent. The schema
// is applied in one transaction holding a transaction-level advisory lock, so
// concurrent callers on any pooled connection run it one at a time.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.schema"))

	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return eris.Wrap(err, "store: read schema dir")
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin schema tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", schemaLockID); err != nil {
		return eris.Wrap(err, "store: acquire schema advisory lock")
	}

	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return eris.Wrapf(err, "store: read schema %s", entry.Name())
		}
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return eris.Wrapf(err, "store: apply schema %s", entry.Name())
		}
		log.Debug("schema applied", zap.String("file", entry.Name()))
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "store: commit schema tx")
	}
	return nil
}

// Truncate empties one destination table.
func (s *PostgresStore) Truncate(ctx context.Context, table string) error {
	return db.Truncate(ctx, s.pool, table)
}
