package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/model"
)

func newTestTracker(sink *recordingSink) (*tracker, *model.Job) {
	job := newJob("/data/TX.txt", model.KindRegistry)
	return newTracker(job, sink, zap.NewNop()), job
}

func TestTracker_CurrentNeverDecreases(t *testing.T) {
	sink := &recordingSink{}
	tr, job := newTestTracker(sink)
	ctx := context.Background()

	tr.queued(ctx)
	tr.progress(ctx, 0, 10, "start")
	tr.progress(ctx, 4, 10, "")
	tr.progress(ctx, 2, 10, "")
	tr.progress(ctx, 10, 10, "held")
	tr.complete(ctx, "done")

	require.Len(t, sink.updates, 5)
	var currents []int64
	for _, u := range sink.updates {
		currents = append(currents, u.Current)
	}
	assert.Equal(t, []int64{0, 0, 4, 4, 10}, currents)
	assert.Equal(t, "done", job.Message)
	assert.Equal(t, model.JobCompleted, job.Status)
	requireMonotonic(t, sink.updates)
}

func TestTracker_FirstUpdateAtTotalIsClamped(t *testing.T) {
	sink := &recordingSink{}
	tr, job := newTestTracker(sink)
	ctx := context.Background()

	tr.queued(ctx)
	tr.progress(ctx, 5, 5, "")

	assert.Equal(t, int64(4), job.Current)
	assert.Equal(t, model.JobProcessing, job.Status)
}

func TestTracker_QueuedFields(t *testing.T) {
	sink := &recordingSink{}
	tr, _ := newTestTracker(sink)

	tr.queued(context.Background())

	require.Len(t, sink.updates, 1)
	u := sink.updates[0]
	assert.Equal(t, model.JobQueued, u.Status)
	assert.Equal(t, "/data/TX.txt", u.Fields["filename"])
	assert.Equal(t, string(model.KindRegistry), u.Fields["file_type"])
	assert.NotEmpty(t, u.Fields["started_at"])
}

func TestTracker_TerminalStateIsFinal(t *testing.T) {
	sink := &recordingSink{}
	tr, job := newTestTracker(sink)
	ctx := context.Background()

	tr.queued(ctx)
	tr.fail(ctx, errors.New("boom"))
	require.NotNil(t, job.FinishedAt)
	finished := *job.FinishedAt

	tr.progress(ctx, 1, 10, "late")
	tr.complete(ctx, "late")

	assert.Equal(t, model.JobFailed, job.Status)
	assert.Equal(t, "boom", job.Message)
	assert.Equal(t, finished, *job.FinishedAt)
	assert.Equal(t, []model.JobStatus{model.JobQueued, model.JobFailed}, sink.statuses())
}

func TestTracker_NilSink(t *testing.T) {
	job := newJob("x.txt", model.KindRegistry)
	tr := newTracker(job, nil, zap.NewNop())

	assert.NotPanics(t, func() {
		tr.queued(context.Background())
		tr.complete(context.Background(), "")
	})
	assert.Equal(t, model.JobCompleted, job.Status)
}
