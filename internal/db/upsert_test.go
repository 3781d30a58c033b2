package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTx_EmptyRows(t *testing.T) {
	n, err := UpsertTx(context.TODO(), nil, UpsertConfig{
		Table:        "dnc_records",
		Columns:      []string{"number", "state"},
		ConflictKeys: []string{"number"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertTx_NoColumns(t *testing.T) {
	_, err := UpsertTx(context.TODO(), nil, UpsertConfig{
		Table:        "dnc_records",
		ConflictKeys: []string{"number"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestUpsertTx_NoConflictKeys(t *testing.T) {
	_, err := UpsertTx(context.TODO(), nil, UpsertConfig{
		Table:   "dnc_records",
		Columns: []string{"number", "state"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestUpsertTx_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_suppression_records"}, []string{"number", "commodity"}).WillReturnResult(2)
	mock.ExpectExec("ON CONFLICT").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	n, err := UpsertTx(ctx, tx, UpsertConfig{
		Table:        "suppression_records",
		Columns:      []string{"number", "commodity"},
		ConflictKeys: []string{"number"},
	}, [][]any{{int64(1), "GAS"}, {int64(2), "ELECTRIC"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertTx_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_dnc_records"}, []string{"number", "state"}).WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	_, err = UpsertTx(ctx, tx, UpsertConfig{
		Table:        "dnc_records",
		Columns:      []string{"number", "state"},
		ConflictKeys: []string{"number"},
		DoNothing:    true,
	}, [][]any{{int64(1), "TX"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table for dnc_records")
	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSQL_DoUpdate(t *testing.T) {
	got := upsertSQL(UpsertConfig{
		Table:        "suppression_records",
		Columns:      []string{"number", "commodity", "updated_at"},
		ConflictKeys: []string{"number"},
	}, "_tmp")
	assert.Equal(t,
		`INSERT INTO "suppression_records" ("number", "commodity", "updated_at") SELECT "number", "commodity", "updated_at" FROM "_tmp" ON CONFLICT ("number") DO UPDATE SET "commodity" = EXCLUDED."commodity", "updated_at" = EXCLUDED."updated_at"`,
		got)
}

func TestUpsertSQL_DoNothing(t *testing.T) {
	got := upsertSQL(UpsertConfig{
		Table:        "dnc_records",
		Columns:      []string{"number", "state"},
		ConflictKeys: []string{"number"},
		DoNothing:    true,
	}, "_tmp")
	assert.Equal(t,
		`INSERT INTO "dnc_records" ("number", "state") SELECT "number", "state" FROM "_tmp" ON CONFLICT ("number") DO NOTHING`,
		got)
}

func TestUpdateColumns_Explicit(t *testing.T) {
	cols := updateColumns(UpsertConfig{
		Columns:      []string{"a", "b", "c"},
		ConflictKeys: []string{"a"},
		UpdateCols:   []string{"c"},
	})
	assert.Equal(t, []string{"c"}, cols)
}

func TestTruncate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`TRUNCATE TABLE "sales_records"`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	require.NoError(t, Truncate(context.Background(), mock, "sales_records"))

	mock.ExpectExec("TRUNCATE TABLE").WillReturnError(fmt.Errorf("permission denied"))
	err = Truncate(context.Background(), mock, "sales_records")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: truncate sales_records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTempTableName(t *testing.T) {
	assert.Equal(t, "_tmp_upsert_dnc_records", TempTableName("dnc_records"))
	assert.Equal(t, "_tmp_upsert_public_dnc_records", TempTableName("public.dnc_records"))
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.dnc_records", `"public"."dnc_records"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"number", "state"`, quoteAndJoin([]string{"number", "state"}))
}
