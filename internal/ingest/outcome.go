// Package ingest drives one file through normalization, aggregation and the
// batch writer, and reports the job's lifecycle.
package ingest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/dnc-processor/internal/phone"
)

// SkipReason names why a raw row was dropped.
type SkipReason string

// Skip reasons beyond the phone.Reason values.
const (
	SkipUnparseable SkipReason = "unparseable"   // rejected by the CSV parser
	SkipLineTooLong SkipReason = "line_too_long" // registry line over the size limit
)

// Outcome is the result of parsing one raw row: a value, or a skip reason.
type Outcome[T any] struct {
	Value T
	Skip  SkipReason
}

// Ok wraps an accepted value.
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Skipped records a rejected row.
func Skipped[T any](r SkipReason) Outcome[T] { return Outcome[T]{Skip: r} }

// SkippedPhone records a row rejected by the phone normalizer.
func SkippedPhone[T any](r phone.Reason) Outcome[T] { return Outcome[T]{Skip: SkipReason(r)} }

// OK reports whether the row was accepted.
func (o Outcome[T]) OK() bool { return o.Skip == "" }

// Tally counts accepted and skipped rows.
type Tally struct {
	Rows     int64
	Accepted int64
	Skipped  map[SkipReason]int64
}

// Add counts one parsed row.
func (t *Tally) Add(skip SkipReason) {
	t.Rows++
	if skip == "" {
		t.Accepted++
		return
	}
	t.AddSkipped(skip, 1)
}

// AddSkipped counts n rows that were dropped before parsing.
func (t *Tally) AddSkipped(skip SkipReason, n int64) {
	if n <= 0 {
		return
	}
	if t.Skipped == nil {
		t.Skipped = make(map[SkipReason]int64)
	}
	t.Rows += n
	t.Skipped[skip] += n
}

// TotalSkipped sums every skip reason.
func (t *Tally) TotalSkipped() int64 {
	var n int64
	for _, c := range t.Skipped {
		n += c
	}
	return n
}

// String renders the skip breakdown, e.g. "too_short=3 empty=1".
func (t *Tally) String() string {
	reasons := make([]string, 0, len(t.Skipped))
	for r := range t.Skipped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = r + "=" + strconv.FormatInt(t.Skipped[SkipReason(r)], 10)
	}
	return strings.Join(parts, " ")
}

// Collect appends every accepted value to out and counts the rest.
func Collect[T any](t *Tally, outcomes []Outcome[T]) []T {
	out := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		t.Add(o.Skip)
		if o.OK() {
			out = append(out, o.Value)
		}
	}
	return out
}
