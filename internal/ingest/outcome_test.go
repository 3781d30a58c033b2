package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dnc-processor/internal/phone"
)

func TestCollect(t *testing.T) {
	var tally Tally
	got := Collect(&tally, []Outcome[int64]{
		Ok(int64(1)),
		SkippedPhone[int64](phone.ReasonTooShort),
		Ok(int64(2)),
		SkippedPhone[int64](phone.ReasonEmpty),
		SkippedPhone[int64](phone.ReasonTooShort),
	})

	assert.Equal(t, []int64{1, 2}, got)
	assert.Equal(t, int64(5), tally.Rows)
	assert.Equal(t, int64(2), tally.Accepted)
	assert.Equal(t, int64(3), tally.TotalSkipped())
	assert.Equal(t, int64(2), tally.Skipped[SkipReason(phone.ReasonTooShort)])
}

func TestTally_AddSkipped(t *testing.T) {
	var tally Tally
	tally.AddSkipped(SkipUnparseable, 0)
	assert.Nil(t, tally.Skipped)

	tally.AddSkipped(SkipUnparseable, 3)
	tally.Add("")
	assert.Equal(t, int64(4), tally.Rows)
	assert.Equal(t, int64(1), tally.Accepted)
	assert.Equal(t, int64(3), tally.Skipped[SkipUnparseable])
}

func TestTally_String(t *testing.T) {
	var tally Tally
	assert.Empty(t, tally.String())

	tally.AddSkipped(SkipReason(phone.ReasonTooShort), 3)
	tally.AddSkipped(SkipReason(phone.ReasonEmpty), 1)
	tally.AddSkipped(SkipUnparseable, 2)

	assert.Equal(t, "empty=1 too_short=3 unparseable=2", tally.String())
}

func TestOutcome_OK(t *testing.T) {
	assert.True(t, Ok("x").OK())
	assert.False(t, Skipped[string](SkipUnparseable).OK())
}
