package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/jurisdiction"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/phone"
	"github.com/sells-group/dnc-processor/internal/source"
	"github.com/sells-group/dnc-processor/internal/store"
)

// loadRegistry streams a line-oriented registry file and inserts each chunk
// of valid numbers as soon as it fills. Numbers already stored are kept.
func (r *Runner) loadRegistry(ctx context.Context, job *model.Job, t *tracker, log *zap.Logger) (*Summary, error) {
	sum := &Summary{Kind: job.Kind}

	total, err := source.CountLines(job.Path)
	if err != nil {
		return sum, err
	}
	if total == 0 {
		return sum, eris.Wrapf(source.ErrEmpty, "%s", filepath.Base(job.Path))
	}

	state, ok := jurisdiction.FromFilename(job.Path)
	if !ok {
		log.Warn("ingest: no jurisdiction in filename, using default", zap.String("state", state))
	}
	sum.Jurisdiction = state
	t.progress(ctx, 0, total, fmt.Sprintf("Processing DNC numbers for state %s", state))

	size := r.opts.RegistryChunkSize
	chunk := make([]model.RegistryRecord, 0, size)
	flush := func(line int64) error {
		if len(chunk) == 0 {
			return nil
		}
		err := writeAll(ctx, r, sum, store.TableRegistry, len(chunk), chunk, insertRegistry, nil)
		if err != nil {
			return eris.Wrapf(err, "ingest: registry chunk %d ending at line %d", sum.Batches+1, line)
		}
		chunk = chunk[:0]
		t.progress(ctx, line, total, fmt.Sprintf("Processed %d DNC numbers for %s", sum.Written, state))
		return nil
	}

	err = source.ScanLines(ctx, job.Path, func(ln source.Line) error {
		if ln.TooLong {
			sum.Tally.Add(SkipLineTooLong)
			log.Warn("ingest: skipping overlong line", zap.Int64("line", ln.Num))
			return nil
		}
		n, reason := phone.Normalize(ln.Field, phone.MinRegistryDigits)
		sum.Tally.Add(SkipReason(reason))
		if reason != "" {
			return nil
		}
		chunk = append(chunk, model.RegistryRecord{Number: n, Jurisdiction: state})
		if len(chunk) >= size {
			return flush(ln.Num)
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	if err := flush(total); err != nil {
		return sum, err
	}

	if sum.Tally.Accepted == 0 {
		return sum, eris.Wrapf(ErrNoRecords, "%s: %d lines, none with %d or more digits",
			filepath.Base(job.Path), sum.Tally.Rows, phone.MinRegistryDigits)
	}
	sum.Canonical = sum.Tally.Accepted
	return sum, nil
}

func insertRegistry(ctx context.Context, tx pgx.Tx, batch []model.RegistryRecord) (int64, error) {
	return store.InsertRegistry(ctx, tx, batch)
}
