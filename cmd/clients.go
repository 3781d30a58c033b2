package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/ingest"
	"github.com/sells-group/dnc-processor/internal/progress"
	"github.com/sells-group/dnc-processor/internal/store"
)

func openStore(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("no database_url configured (set DNC_STORE_DATABASE_URL)")
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
}

func openRedis() (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, eris.New("no redis url configured (set DNC_REDIS_URL)")
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, eris.Wrap(err, "parse redis url")
	}
	return redis.NewClient(opts), nil
}

func newReporter(rdb redis.UniversalClient) *progress.Reporter {
	return progress.NewReporter(rdb, progress.Options{
		TTL:         cfg.Progress.TTL,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		MinInterval: cfg.Progress.MinInterval,
	})
}

// openSink returns the Redis progress reporter, or a no-op sink when Redis is
// unset or unreachable. Progress is informational and never blocks a load.
func openSink(ctx context.Context) (progress.Sink, func()) {
	rdb, err := openRedis()
	if err != nil {
		zap.L().Warn("progress reporting disabled", zap.Error(err))
		return progress.Nop{}, func() {}
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("progress reporting disabled, redis unreachable",
			zap.String("url", cfg.Redis.URL), zap.Error(err))
		_ = rdb.Close()
		return progress.Nop{}, func() {}
	}
	return newReporter(rdb), func() { _ = rdb.Close() }
}

func runnerOptions() ingest.Options {
	return ingest.Options{
		RegistryChunkSize:    cfg.Ingest.RegistryChunkSize,
		SuppressionBatchSize: cfg.Ingest.SuppressionBatchSize,
		SalesBatchSize:       cfg.Ingest.SalesBatchSize,
		Delimiter:            cfg.Ingest.DelimiterRune(),
		ReplaceExisting:      cfg.Ingest.ReplaceExisting,
	}
}

func pushMetrics(ctx context.Context, m *ingest.Metrics) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName); err != nil {
		zap.L().Warn("metrics push failed", zap.Error(err))
	}
}
