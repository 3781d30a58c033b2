// Package db provides shared database helpers for bulk upsert and copy operations.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier runs statements. *pgxpool.Pool, pgx.Tx and pgxmock satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Copier bulk-loads rows with the COPY protocol.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Conn is a connection or transaction able to both query and COPY.
type Conn interface {
	Querier
	Copier
}

// Pool is the connection pool used by the store and the batch writer.
type Pool interface {
	Conn
	Begin(ctx context.Context) (pgx.Tx, error)
}
