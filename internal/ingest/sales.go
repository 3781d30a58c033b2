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

// salesLayout locates the sales columns in a table. Separate mode reads
// primary_number and an optional alternate_number; combined mode splits the
// first column whose name contains "number".
type salesLayout struct {
	primary   int
	alternate int // -1 when absent
	combined  bool
	date      int
	provider  int
	commodity int
	comments  int
	dayFirst  bool
}

func resolveSalesLayout(tbl *source.Table, dayFirst bool) (salesLayout, error) {
	l := salesLayout{alternate: -1, dayFirst: dayFirst}

	var ok bool
	if l.primary, ok = tbl.Column("primary_number"); ok {
		if alt, found := tbl.Column("alternate_number"); found {
			l.alternate = alt
		}
	} else if l.primary, ok = tbl.ColumnContaining("number"); ok {
		l.combined = true
	}

	var dateOK bool
	if l.date, dateOK = tbl.Column("sale_date"); !dateOK {
		l.date, dateOK = tbl.ColumnContaining("date")
	}

	if !ok || !dateOK {
		var missing []string
		if !ok {
			missing = append(missing, "a number column")
		}
		if !dateOK {
			missing = append(missing, "a date column")
		}
		return l, eris.Wrapf(source.ErrMissingColumns, "required %v, found %v", missing, tbl.Header)
	}

	l.provider = columnOr(tbl, "provider")
	l.commodity = columnOr(tbl, "commodity")
	l.comments = columnOr(tbl, "notes")
	if l.comments < 0 {
		l.comments = columnOr(tbl, "comments")
	}
	return l, nil
}

func columnOr(tbl *source.Table, name string) int {
	if i, ok := tbl.Column(name); ok {
		return i
	}
	return -1
}

// parse reads one sales row. undated is true when the date cell held a value
// that could not be read; the row is kept with no date.
func (l salesLayout) parse(row []string) (out Outcome[model.SalesRow], undated bool) {
	var (
		sr     model.SalesRow
		reason phone.Reason
	)
	if l.combined {
		sr.Primary, sr.Alternate, reason = phone.SplitSales(source.Cell(row, l.primary))
	} else {
		sr.Primary, reason = phone.SalesNumber(source.Cell(row, l.primary))
		if reason == "" && l.alternate >= 0 {
			if alt, altReason := phone.SalesNumber(source.Cell(row, l.alternate)); altReason == "" {
				sr.Alternate = &alt
			}
		}
	}
	if reason != "" {
		return SkippedPhone[model.SalesRow](reason), false
	}

	date, ok := parseSaleDate(source.Cell(row, l.date), l.dayFirst)
	sr.SaleDate = date
	sr.Provider = source.Cell(row, l.provider)
	sr.Commodity = source.Cell(row, l.commodity)
	if c := source.Cell(row, l.comments); c != "" {
		sr.Comments = &c
	}
	return Ok(sr), !ok
}

func (r *Runner) loadSales(ctx context.Context, job *model.Job, t *tracker, log *zap.Logger) (*Summary, error) {
	sum := &Summary{Kind: job.Kind}

	records, layout, err := r.buildSales(ctx, job.Path, sum)
	if err != nil {
		return sum, err
	}
	log.Info("ingest: sales rows aggregated",
		zap.Int64("rows", sum.Tally.Rows),
		zap.Int("unique_numbers", len(records)),
		zap.Bool("combined_numbers", layout.combined),
		zap.Int64("undated_rows", sum.UndatedRows),
	)

	t.progress(ctx, 0, sum.Canonical, fmt.Sprintf("Inserting %d unique and merged records...", len(records)))

	if err := r.store.Truncate(ctx, store.TableSales); err != nil {
		return sum, err
	}

	if err := writeAll(ctx, r, sum, store.TableSales, r.opts.SalesBatchSize, records,
		insertSales, batchProgress(ctx, t)); err != nil {
		return sum, err
	}
	return sum, nil
}

// buildSales reads, validates and aggregates a sales source.
func (r *Runner) buildSales(ctx context.Context, path string, sum *Summary) ([]model.SalesRecord, salesLayout, error) {
	name := filepath.Base(path)

	tbl, err := source.ReadTable(ctx, path, source.Options{Delimiter: r.opts.Delimiter, Sheet: r.opts.Sheet})
	if err != nil {
		return nil, salesLayout{}, err
	}
	layout, err := resolveSalesLayout(tbl, source.IsSpreadsheet(path))
	if err != nil {
		return nil, layout, eris.Wrapf(err, "ingest: %s", name)
	}
	sum.Tally.AddSkipped(SkipUnparseable, int64(tbl.Rejected))

	outcomes := make([]Outcome[model.SalesRow], len(tbl.Rows))
	for i, row := range tbl.Rows {
		var undated bool
		outcomes[i], undated = layout.parse(row)
		if undated {
			sum.UndatedRows++
		}
	}
	rows := Collect(&sum.Tally, outcomes)

	records := merge.Sales(rows)
	if len(records) == 0 {
		return nil, layout, eris.Wrapf(ErrNoRecords, "%s: %d rows, none with a %d-digit number",
			name, sum.Tally.Rows, phone.SalesDigits)
	}
	sum.Canonical = int64(len(records))
	return records, layout, nil
}

func insertSales(ctx context.Context, tx pgx.Tx, batch []model.SalesRecord) (int64, error) {
	return store.InsertSales(ctx, tx, batch)
}
