package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/merge"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/phone"
	"github.com/sells-group/dnc-processor/internal/source"
	"github.com/sells-group/dnc-processor/internal/store"
)

// Suppression source columns, matched after header normalization.
const (
	colSuppressionPhone     = "serv_phone_num"
	colSuppressionCommodity = "commodity"
)

func (r *Runner) loadSuppression(ctx context.Context, job *model.Job, t *tracker, log *zap.Logger) (*Summary, error) {
	sum := &Summary{Kind: job.Kind}

	records, err := r.buildSuppression(ctx, job.Path, sum)
	if err != nil {
		return sum, err
	}
	log.Info("ingest: suppression rows aggregated",
		zap.Int64("rows", sum.Tally.Rows),
		zap.Int("unique_numbers", len(records)),
	)

	t.progress(ctx, 0, sum.Canonical, fmt.Sprintf("Inserting %d unique numbers...", len(records)))

	if r.opts.ReplaceExisting {
		if err := r.store.Truncate(ctx, store.TableSuppression); err != nil {
			return sum, err
		}
	}

	if err := writeAll(ctx, r, sum, store.TableSuppression, r.opts.SuppressionBatchSize, records,
		upsertSuppression, batchProgress(ctx, t)); err != nil {
		return sum, err
	}
	return sum, nil
}

// buildSuppression reads, validates and aggregates a suppression source.
func (r *Runner) buildSuppression(ctx context.Context, path string, sum *Summary) ([]model.SuppressionRecord, error) {
	name := filepath.Base(path)

	tbl, err := source.ReadTable(ctx, path, source.Options{Delimiter: r.opts.Delimiter, Sheet: r.opts.Sheet})
	if err != nil {
		return nil, err
	}
	idx, err := tbl.Require(colSuppressionPhone, colSuppressionCommodity)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: %s", name)
	}
	sum.Tally.AddSkipped(SkipUnparseable, int64(tbl.Rejected))

	outcomes := make([]Outcome[model.SuppressionRow], len(tbl.Rows))
	for i, row := range tbl.Rows {
		outcomes[i] = parseSuppressionRow(row, idx[0], idx[1])
	}
	rows := Collect(&sum.Tally, outcomes)

	records := merge.Suppression(rows)
	if len(records) == 0 {
		return nil, eris.Wrapf(ErrNoRecords, "%s: %d rows, none with %d or more digits",
			name, sum.Tally.Rows, phone.MinSuppressionDigits)
	}
	sum.Canonical = int64(len(records))
	return records, nil
}

func upsertSuppression(ctx context.Context, tx pgx.Tx, batch []model.SuppressionRecord) (int64, error) {
	return store.UpsertSuppression(ctx, tx, batch)
}

// parseSuppressionRow validates the phone cell. A blank commodity becomes
// the sentinel label.
func parseSuppressionRow(row []string, phoneIdx, commodityIdx int) Outcome[model.SuppressionRow] {
	n, reason := phone.Normalize(source.Cell(row, phoneIdx), phone.MinSuppressionDigits)
	if reason != "" {
		return SkippedPhone[model.SuppressionRow](reason)
	}
	commodity := source.Cell(row, commodityIdx)
	if commodity == "" {
		commodity = model.UnknownCommodity
	}
	return Ok(model.SuppressionRow{Number: n, Commodity: commodity})
}
