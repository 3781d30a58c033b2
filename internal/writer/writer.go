// Package writer streams canonical records to Postgres in fixed-size
// batches, each in its own transaction.
package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/db"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 10000

// ApplyFunc writes one batch on tx and returns the number of rows affected.
type ApplyFunc[T any] func(ctx context.Context, tx pgx.Tx, batch []T) (int64, error)

// Options configures Write.
type Options struct {
	BatchSize int
	Table     string // for logging only
	// OnBatch is called after each commit with the cumulative number of
	// records committed and the total record count.
	OnBatch func(done, total int)
}

// Result summarizes the batches that were committed.
type Result struct {
	Batches   int   // total batches planned
	Committed int   // batches committed
	Records   int   // records in committed batches
	Affected  int64 // rows inserted or updated by committed batches
}

// BatchError reports the batch that failed. Batches before it stay committed.
type BatchError struct {
	Index int // 1-based
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return eris.Wrapf(e.Err, "writer: batch %d of %d", e.Index, e.Total).Error()
}

func (e *BatchError) Unwrap() error { return e.Err }

// Write partitions records into contiguous batches and applies each inside
// its own transaction. The first failing batch is rolled back and Write
// stops; later batches are never attempted.
func Write[T any](ctx context.Context, pool db.Pool, records []T, opts Options, apply ApplyFunc[T]) (Result, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	log := zap.L().With(zap.String("component", "writer"), zap.String("table", opts.Table))

	res := Result{Batches: (len(records) + size - 1) / size}
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		idx := start/size + 1

		began := time.Now()
		n, err := writeBatch(ctx, pool, records[start:end], apply)
		if err != nil {
			log.Error("batch failed, rolled back",
				zap.Int("batch", idx),
				zap.Int("batches", res.Batches),
				zap.Error(err),
			)
			return res, &BatchError{Index: idx, Total: res.Batches, Err: err}
		}

		res.Committed++
		res.Records = end
		res.Affected += n
		log.Debug("batch committed",
			zap.Int("batch", idx),
			zap.Int("records", end-start),
			zap.Int64("affected", n),
			zap.Duration("elapsed", time.Since(began)),
		)

		if opts.OnBatch != nil {
			opts.OnBatch(res.Records, len(records))
		}
	}
	return res, nil
}

func writeBatch[T any](ctx context.Context, pool db.Pool, batch []T, apply ApplyFunc[T]) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "writer: begin tx")
	}
	defer tx.Rollback(ctx)

	n, err := apply(ctx, tx, batch)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "writer: commit tx")
	}
	return n, nil
}
