package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dnc-processor/internal/model"
)

func TestFormatJobEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatJobEntries(&buf, nil)

	assert.Contains(t, buf.String(), "JOB")
	assert.Contains(t, buf.String(), "STATUS")
}

func TestFormatJobEntries(t *testing.T) {
	entries := []map[string]any{
		{
			"job_id":     "job-2",
			"status":     "completed",
			"current":    float64(500),
			"total":      float64(500),
			"updated_at": "2026-01-15T10:30:00Z",
			"message":    "Inserted 480 new numbers for TX from 500 lines",
		},
		{"job_id": "job-1", "status": "failed", "message": strings.Repeat("x", 100)},
	}

	var buf bytes.Buffer
	formatJobEntries(&buf, entries)

	out := buf.String()
	assert.Contains(t, out, "job-2")
	assert.Contains(t, out, "500/500")
	assert.Contains(t, out, "2026-01-15T10:30:00Z")
	assert.Contains(t, out, "-/-")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("x", 100))
}

func TestField(t *testing.T) {
	e := map[string]any{"s": "v", "n": float64(12), "f": 0.5, "b": true}
	assert.Equal(t, "v", field(e, "s"))
	assert.Equal(t, "12", field(e, "n"))
	assert.Equal(t, "0.5", field(e, "f"))
	assert.Equal(t, "true", field(e, "b"))
	assert.Equal(t, "-", field(e, "missing"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}

func TestEntriesOfKind(t *testing.T) {
	entries := []map[string]any{
		{"job_id": "a", "file_type": string(model.KindSales)},
		{"job_id": "b", "file_type": string(model.KindRegistry)},
		{"job_id": "c"},
		{"job_id": "d", "file_type": string(model.KindSales)},
	}

	got := entriesOfKind(entries, model.KindSales)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0]["job_id"])
	assert.Equal(t, "d", got[1]["job_id"])
	assert.Len(t, entries, 4)

	assert.Empty(t, entriesOfKind(entries, model.KindSuppression))
}
