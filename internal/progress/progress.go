// Package progress publishes job state to Redis for the upload UI poller.
// Writes are best effort: failures are logged and never returned.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/dnc-processor/internal/model"
)

// Defaults for Options.
const (
	DefaultTTL       = time.Hour
	DefaultKeyPrefix = "job:"
	DefaultRecent    = 10
)

// ErrNotFound is returned by Get when the job key is absent or expired.
var ErrNotFound = eris.New("progress: job not found")

// Update is one state change of a job.
type Update struct {
	Current int64
	Total   int64
	Status  model.JobStatus
	Message string
	// Fields are written into the entry as-is (e.g. filename, started_at).
	Fields map[string]any
}

// Percent is Current as a share of Total, 0 when Total is 0.
func (u Update) Percent() float64 {
	if u.Total <= 0 {
		return 0
	}
	return float64(u.Current) / float64(u.Total) * 100
}

// Sink receives job updates.
type Sink interface {
	Report(ctx context.Context, jobID string, u Update)
}

// Nop discards every update.
type Nop struct{}

// Report implements Sink.
func (Nop) Report(context.Context, string, Update) {}

// Options configures a Reporter.
type Options struct {
	TTL       time.Duration
	KeyPrefix string
	// MinInterval throttles consecutive processing updates. Status changes
	// are always written. Zero disables throttling.
	MinInterval time.Duration
}

// Reporter writes job entries as JSON objects under <prefix><job_id>.
type Reporter struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	every  rate.Limit
	now    func() time.Time
	log    *zap.Logger

	mu   sync.Mutex
	jobs map[string]*jobState
}

// jobState is the throttling state of one job.
type jobState struct {
	status  model.JobStatus
	limiter *rate.Limiter
}

// NewReporter creates a Reporter on rdb.
func NewReporter(rdb redis.UniversalClient, opts Options) *Reporter {
	r := &Reporter{
		rdb:    rdb,
		ttl:    opts.TTL,
		prefix: opts.KeyPrefix,
		now:    time.Now,
		log:    zap.L().With(zap.String("component", "progress")),
		jobs:   make(map[string]*jobState),
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.prefix == "" {
		r.prefix = DefaultKeyPrefix
	}
	if opts.MinInterval > 0 {
		r.every = rate.Every(opts.MinInterval)
	}
	return r
}

// Key returns the Redis key for jobID.
func (r *Reporter) Key(jobID string) string {
	return r.prefix + jobID
}

// Report merges u into the stored entry and refreshes its TTL. Fields not
// named by u are kept.
func (r *Reporter) Report(ctx context.Context, jobID string, u Update) {
	if r.throttled(jobID, u.Status) {
		return
	}
	if err := r.write(ctx, jobID, u); err != nil {
		r.log.Error("progress: update failed",
			zap.String("job_id", jobID),
			zap.String("status", string(u.Status)),
			zap.Error(err),
		)
	}
}

// throttled reports whether a repeated processing update for jobID falls
// inside its MinInterval. Each job has its own limiter; the state is dropped
// once the job reaches a terminal status.
func (r *Reporter) throttled(jobID string, status model.JobStatus) bool {
	if r.every == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	st, seen := r.jobs[jobID]
	if !seen {
		st = &jobState{limiter: rate.NewLimiter(r.every, 1)}
		r.jobs[jobID] = st
	}
	prev := st.status
	st.status = status

	if status.Terminal() {
		delete(r.jobs, jobID)
		return false
	}
	if status != model.JobProcessing || !seen || prev != status {
		return false
	}
	return !st.limiter.Allow()
}

func (r *Reporter) write(ctx context.Context, jobID string, u Update) error {
	key := r.Key(jobID)

	entry, err := r.load(ctx, key)
	if err != nil {
		return err
	}

	for k, v := range u.Fields {
		entry[k] = v
	}
	entry["job_id"] = jobID
	entry["current"] = u.Current
	entry["total"] = u.Total
	entry["status"] = string(u.Status)
	entry["progress"] = u.Percent()
	entry["updated_at"] = r.now().UTC().Format(time.RFC3339)
	if u.Message != "" {
		entry["message"] = u.Message
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "progress: marshal entry")
	}
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return eris.Wrapf(err, "progress: set %s", key)
	}
	return nil
}

func (r *Reporter) load(ctx context.Context, key string) (map[string]any, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "progress: get %s", key)
	}

	entry := map[string]any{}
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is replaced rather than blocking updates.
		r.log.Warn("progress: discarding unreadable entry", zap.String("key", key), zap.Error(err))
		return map[string]any{}, nil
	}
	return entry, nil
}

// Get returns the stored entry for jobID.
func (r *Reporter) Get(ctx context.Context, jobID string) (map[string]any, error) {
	key := r.Key(jobID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "progress: get %s", key)
	}

	entry := map[string]any{}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, eris.Wrapf(err, "progress: decode %s", key)
	}
	return entry, nil
}

// Recent returns up to limit entries, keys sorted in descending order.
func (r *Reporter) Recent(ctx context.Context, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}

	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrapf(err, "progress: scan %s*", r.prefix)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		entry, err := r.Get(ctx, strings.TrimPrefix(key, r.prefix))
		if errors.Is(err, ErrNotFound) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
