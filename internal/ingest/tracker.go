package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/progress"
)

// tracker owns a job's state for one run and forwards every accepted change
// to the progress sink. Current never decreases and only the completion
// update reports current == total.
type tracker struct {
	job  *model.Job
	sink progress.Sink
	log  *zap.Logger
	now  func() time.Time
}

func newTracker(job *model.Job, sink progress.Sink, log *zap.Logger) *tracker {
	if sink == nil {
		sink = progress.Nop{}
	}
	return &tracker{job: job, sink: sink, log: log, now: time.Now}
}

func (t *tracker) transition(ctx context.Context, next model.JobStatus, msg string, fields map[string]any) {
	if !t.job.Status.CanTransition(next) && t.job.Status != "" {
		t.log.Warn("ingest: ignoring invalid job transition",
			zap.String("from", string(t.job.Status)),
			zap.String("to", string(next)),
		)
		return
	}
	t.job.Status = next
	t.job.UpdatedAt = t.now()
	if msg != "" {
		t.job.Message = msg
	}
	if next.Terminal() {
		done := t.job.UpdatedAt
		t.job.FinishedAt = &done
	}
	t.sink.Report(ctx, t.job.ID, progress.Update{
		Current: t.job.Current,
		Total:   t.job.Total,
		Status:  next,
		Message: msg,
		Fields:  fields,
	})
}

func (t *tracker) queued(ctx context.Context) {
	t.job.StartedAt = t.now()
	t.transition(ctx, model.JobQueued, "", map[string]any{
		"filename":   t.job.Path,
		"file_type":  string(t.job.Kind),
		"started_at": t.job.StartedAt.UTC().Format(time.RFC3339),
	})
}

// progress reports a processing update. An update that would reach total is
// held back for complete.
func (t *tracker) progress(ctx context.Context, current, total int64, msg string) {
	if total > 0 && total != t.job.Total {
		t.job.Total = total
	}
	if current < t.job.Current {
		current = t.job.Current
	}
	if t.job.Total > 0 && current >= t.job.Total {
		if t.job.Status == model.JobProcessing {
			return
		}
		current = t.job.Total - 1
	}
	t.job.Current = current
	t.transition(ctx, model.JobProcessing, msg, nil)
}

func (t *tracker) complete(ctx context.Context, msg string) {
	t.job.Current = t.job.Total
	t.transition(ctx, model.JobCompleted, msg, nil)
}

func (t *tracker) fail(ctx context.Context, err error) {
	t.transition(ctx, model.JobFailed, err.Error(), nil)
}
