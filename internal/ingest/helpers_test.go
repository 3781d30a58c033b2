package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/db"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/progress"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeStore hands out a pgxmock pool and records schema and truncate calls.
type fakeStore struct {
	pool        pgxmock.PgxPoolIface
	schemaErr   error
	schemaCalls int
	truncated   []string
}

func (f *fakeStore) Pool() db.Pool { return f.pool }

func (f *fakeStore) EnsureSchema(context.Context) error {
	f.schemaCalls++
	return f.schemaErr
}

func (f *fakeStore) Truncate(_ context.Context, table string) error {
	f.truncated = append(f.truncated, table)
	return nil
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return &fakeStore{pool: mock}
}

// recordingSink keeps every update in order.
type recordingSink struct {
	mu      sync.Mutex
	updates []progress.Update
}

func (s *recordingSink) Report(_ context.Context, _ string, u progress.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
}

func (s *recordingSink) statuses() []model.JobStatus {
	out := make([]model.JobStatus, len(s.updates))
	for i, u := range s.updates {
		out[i] = u.Status
	}
	return out
}

func (s *recordingSink) last() progress.Update {
	return s.updates[len(s.updates)-1]
}

// requireMonotonic checks that current never decreases and reaches total
// only on the final, completed update.
func requireMonotonic(t *testing.T, updates []progress.Update) {
	t.Helper()
	var prev int64
	for i, u := range updates {
		require.GreaterOrEqual(t, u.Current, prev, "update %d went backwards", i)
		prev = u.Current
		if i < len(updates)-1 && u.Total > 0 {
			require.Less(t, u.Current, u.Total, "update %d reached total before completion", i)
		}
	}
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func createTestXLSX(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	return path
}

func newJob(path string, kind model.Kind) *model.Job {
	return &model.Job{ID: "job-1", Path: path, Kind: kind}
}

// expectRegistryBatch adds the expectations for one committed registry batch.
func expectRegistryBatch(mock pgxmock.PgxPoolIface, inserted int64) {
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_dnc_records"}, []string{"number", "state", "created_at"}).
		WillReturnResult(inserted)
	mock.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", inserted))
	mock.ExpectCommit()
}

// expectSuppressionBatch adds the expectations for one committed suppression batch.
func expectSuppressionBatch(mock pgxmock.PgxPoolIface, n int64) {
	mock.ExpectBegin()
	mock.ExpectExec("SELECT unnest").WillReturnResult(pgxmock.NewResult("INSERT", n))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(pgxmock.NewRows([]string{"number", "commodity"}))
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_suppression_records"}, []string{"number", "commodity", "updated_at"}).
		WillReturnResult(n)
	mock.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", n))
	mock.ExpectCommit()
}

var salesCols = []string{
	"primary_number", "sale_date", "alternate_number",
	"provider", "commodity", "comments", "updated_at",
}

func expectSalesBatch(mock pgxmock.PgxPoolIface, n int64) {
	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"sales_records"}, salesCols).WillReturnResult(n)
	mock.ExpectCommit()
}
