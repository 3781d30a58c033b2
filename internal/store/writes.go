package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dnc-processor/internal/db"
	"github.com/sells-group/dnc-processor/internal/merge"
	"github.com/sells-group/dnc-processor/internal/model"
)

// InsertRegistry writes one batch of registry records on tx. Numbers already
// stored are left untouched. It returns the number of rows inserted.
func InsertRegistry(ctx context.Context, tx db.Conn, batch []model.RegistryRecord) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, len(batch))
	for i, r := range batch {
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		rows[i] = []any{r.Number, r.Jurisdiction, created}
	}

	n, err := db.UpsertTx(ctx, tx, db.UpsertConfig{
		Table:        TableRegistry,
		Columns:      registryColumns,
		ConflictKeys: []string{"number"},
		DoNothing:    true,
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "store: insert registry batch")
	}
	return n, nil
}

// UpsertSuppression writes one batch of canonical suppression records on tx.
// Every number in the batch is first claimed with an empty placeholder row,
// so the FOR UPDATE lock covers new numbers as well as stored ones and a
// concurrent load always merges against the committed label. Labels are
// merged with merge.Commodity before the upsert. It returns the number of
// rows inserted or updated.
func UpsertSuppression(ctx context.Context, tx db.Conn, batch []model.SuppressionRecord) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	numbers := make([]int64, len(batch))
	for i, r := range batch {
		numbers[i] = r.Number
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO suppression_records (number, commodity) SELECT unnest($1::bigint[]), '' ON CONFLICT (number) DO NOTHING`,
		numbers,
	); err != nil {
		return 0, eris.Wrap(err, "store: claim suppression rows")
	}

	existing, err := lockSuppression(ctx, tx, numbers)
	if err != nil {
		return 0, err
	}

	n, err := db.UpsertTx(ctx, tx, db.UpsertConfig{
		Table:        TableSuppression,
		Columns:      suppressionColumns,
		ConflictKeys: []string{"number"},
		UpdateCols:   []string{"commodity", "updated_at"},
	}, suppressionRows(batch, existing, time.Now().UTC()))
	if err != nil {
		return 0, eris.Wrap(err, "store: upsert suppression batch")
	}
	return n, nil
}

// suppressionRows builds the upsert rows for batch, folding each incoming
// label into the stored one.
func suppressionRows(batch []model.SuppressionRecord, existing map[int64]string, now time.Time) [][]any {
	rows := make([][]any, len(batch))
	for i, r := range batch {
		rows[i] = []any{r.Number, merge.Commodity(existing[r.Number], r.Commodity), now}
	}
	return rows
}

func lockSuppression(ctx context.Context, tx db.Querier, numbers []int64) (map[int64]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT number, commodity FROM suppression_records WHERE number = ANY($1) FOR UPDATE`,
		numbers,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: lock suppression rows")
	}
	defer rows.Close()

	existing := make(map[int64]string)
	for rows.Next() {
		var (
			number    int64
			commodity string
		)
		if err := rows.Scan(&number, &commodity); err != nil {
			return nil, eris.Wrap(err, "store: scan suppression row")
		}
		existing[number] = commodity
	}
	return existing, eris.Wrap(rows.Err(), "store: iterate suppression rows")
}

// InsertSales copies one batch of canonical sales records on tx. The table is
// expected to be empty of these keys; a duplicate fails the batch.
func InsertSales(ctx context.Context, tx db.Copier, batch []model.SalesRecord) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, len(batch))
	for i, r := range batch {
		rows[i] = []any{
			r.PrimaryNumber, r.SaleDate, r.AlternateNumber,
			r.Provider, r.Commodity, r.Comments, now,
		}
	}

	n, err := db.CopyFrom(ctx, tx, TableSales, salesColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "store: insert sales batch")
	}
	return n, nil
}
