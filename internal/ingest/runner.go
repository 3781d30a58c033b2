package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/db"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/progress"
	"github.com/sells-group/dnc-processor/internal/source"
	"github.com/sells-group/dnc-processor/internal/writer"
)

// ErrNoRecords is returned when a source yields no valid record. Nothing is
// truncated or written.
var ErrNoRecords = eris.New("ingest: no valid records in source")

// Store is the part of the persistent store a run needs.
type Store interface {
	Pool() db.Pool
	EnsureSchema(ctx context.Context) error
	Truncate(ctx context.Context, table string) error
}

// Options configures the loaders.
type Options struct {
	RegistryChunkSize    int
	SuppressionBatchSize int
	SalesBatchSize       int
	Delimiter            rune
	// Sheet names the worksheet read from spreadsheet sources. Empty reads
	// the first sheet.
	Sheet string
	// ReplaceExisting truncates the suppression table before loading. Sales
	// loads always truncate; registry loads never do.
	ReplaceExisting bool
}

func (o Options) withDefaults() Options {
	if o.RegistryChunkSize <= 0 {
		o.RegistryChunkSize = writer.DefaultBatchSize
	}
	if o.SuppressionBatchSize <= 0 {
		o.SuppressionBatchSize = writer.DefaultBatchSize
	}
	if o.SalesBatchSize <= 0 {
		o.SalesBatchSize = writer.DefaultBatchSize
	}
	if o.Delimiter == 0 {
		o.Delimiter = source.DefaultDelimiter
	}
	return o
}

// Summary describes a finished run.
type Summary struct {
	Kind         model.Kind    `json:"kind"`
	Jurisdiction string        `json:"jurisdiction,omitempty"`
	Tally        Tally         `json:"tally"`
	Canonical    int64         `json:"canonical"`
	Written      int64         `json:"written"`
	Batches      int           `json:"batches"`
	UndatedRows  int64         `json:"undated_rows,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Message is the human-readable terminal message of a successful run.
func (s *Summary) Message() string {
	skipped := s.Tally.TotalSkipped()
	switch s.Kind {
	case model.KindRegistry:
		return fmt.Sprintf("Inserted %d new numbers for %s from %d lines (%d accepted, %d skipped)",
			s.Written, s.Jurisdiction, s.Tally.Rows, s.Tally.Accepted, skipped)
	case model.KindSuppression:
		return fmt.Sprintf("Upserted %d unique numbers from %d rows (%d skipped)",
			s.Written, s.Tally.Rows, skipped)
	case model.KindSales:
		return fmt.Sprintf("Inserted %d unique sales records from %d rows (%d skipped, %d with an unreadable sale date)",
			s.Written, s.Tally.Rows, skipped, s.UndatedRows)
	default:
		return fmt.Sprintf("Wrote %d records", s.Written)
	}
}

// Runner executes ingestion jobs sequentially against one store.
type Runner struct {
	store   Store
	sink    progress.Sink
	metrics *Metrics
	opts    Options
}

// NewRunner creates a Runner. sink and metrics may be nil.
func NewRunner(st Store, sink progress.Sink, metrics *Metrics, opts Options) *Runner {
	if sink == nil {
		sink = progress.Nop{}
	}
	return &Runner{store: st, sink: sink, metrics: metrics, opts: opts.withDefaults()}
}

// Run loads job.Path as job.Kind and drives the job from queued to completed
// or failed. The returned summary is non-nil whenever loading started, so
// counts of committed batches survive a failure.
func (r *Runner) Run(ctx context.Context, job *model.Job) (*Summary, error) {
	log := zap.L().With(
		zap.String("component", "ingest"),
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("file", filepath.Base(job.Path)),
	)
	t := newTracker(job, r.sink, log)
	t.queued(ctx)

	start := time.Now()
	sum, err := r.run(ctx, job, t, log)
	elapsed := time.Since(start)
	if sum != nil {
		sum.Elapsed = elapsed
	}

	if err != nil {
		t.fail(ctx, err)
		r.metrics.observeRun(string(job.Kind), string(model.JobFailed), elapsed.Seconds(), 0)
		log.Error("ingest: job failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return sum, err
	}

	t.complete(ctx, sum.Message())
	r.metrics.observeRun(string(job.Kind), string(model.JobCompleted), elapsed.Seconds(), float64(time.Now().Unix()))
	log.Info("ingest: job completed",
		zap.Int64("rows", sum.Tally.Rows),
		zap.Int64("accepted", sum.Tally.Accepted),
		zap.Int64("skipped", sum.Tally.TotalSkipped()),
		zap.String("skip_reasons", sum.Tally.String()),
		zap.Int64("canonical", sum.Canonical),
		zap.Int64("written", sum.Written),
		zap.Int("batches", sum.Batches),
		zap.Duration("elapsed", elapsed),
	)
	return sum, nil
}

func (r *Runner) run(ctx context.Context, job *model.Job, t *tracker, log *zap.Logger) (*Summary, error) {
	if err := checkReadable(job.Path); err != nil {
		return nil, err
	}
	t.progress(ctx, 0, 0, "Reading file...")

	if err := r.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var (
		sum *Summary
		err error
	)
	switch job.Kind {
	case model.KindRegistry:
		sum, err = r.loadRegistry(ctx, job, t, log)
	case model.KindSuppression:
		sum, err = r.loadSuppression(ctx, job, t, log)
	case model.KindSales:
		sum, err = r.loadSales(ctx, job, t, log)
	default:
		return nil, eris.Errorf("ingest: unsupported kind %q", job.Kind)
	}
	if sum != nil {
		r.metrics.observeTally(string(job.Kind), &sum.Tally)
	}
	return sum, err
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "ingest: open source")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return eris.Wrap(err, "ingest: stat source")
	}
	if info.IsDir() {
		return eris.Errorf("ingest: source %s is a directory", path)
	}
	return nil
}

// writeAll sends records through the batch writer. onBatch, when set, is
// called after every committed batch.
func writeAll[T any](ctx context.Context, r *Runner, sum *Summary, table string, size int, records []T, apply writer.ApplyFunc[T], onBatch func(done, total int)) error {
	kind := string(sum.Kind)
	res, err := writer.Write(ctx, r.store.Pool(), records, writer.Options{
		BatchSize: size,
		Table:     table,
		OnBatch: func(done, total int) {
			r.metrics.observeBatch(kind, true)
			if onBatch != nil {
				onBatch(done, total)
			}
		},
	}, apply)

	sum.Batches += res.Committed
	sum.Written += res.Affected
	r.metrics.observeWritten(kind, res.Affected)
	if err != nil {
		r.metrics.observeBatch(kind, false)
		return eris.Wrapf(err, "ingest: write %s", table)
	}
	return nil
}

// batchProgress reports cumulative canonical records after each batch.
func batchProgress(ctx context.Context, t *tracker) func(done, total int) {
	return func(done, total int) {
		t.progress(ctx, int64(done), int64(total), fmt.Sprintf("Wrote %d of %d records", done, total))
	}
}
