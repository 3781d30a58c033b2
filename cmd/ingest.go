package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dnc-processor/internal/ingest"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a source file into the store",
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// jobIDs assigns an ID to every file. A given ID is used as is for one file
// and suffixed with the file's position for several.
func jobIDs(base string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		switch {
		case base == "":
			ids[i] = uuid.NewString()
		case n == 1:
			ids[i] = base
		default:
			ids[i] = fmt.Sprintf("%s-%d", base, i+1)
		}
	}
	return ids
}

// runIngest loads every file as kind, up to max_concurrent_files at a time.
// Files are independent: one failure does not cancel the others.
func runIngest(cmd *cobra.Command, kind model.Kind, files []string, jobID string, opts ingest.Options) error {
	ctx := cmd.Context()
	if len(files) == 0 {
		return eris.New("at least one --file is required")
	}
	if err := cfg.Validate("ingest"); err != nil {
		return err
	}

	ids := jobIDs(jobID, len(files))

	sink, closeSink := openSink(ctx)
	defer closeSink()

	st, err := openStore(ctx)
	if err != nil {
		failJobs(context.WithoutCancel(ctx), sink, kind, files, ids, err, cmd.OutOrStdout())
		return err
	}
	defer func() { _ = st.Close() }()

	metrics := ingest.NewMetrics()
	defer pushMetrics(context.WithoutCancel(ctx), metrics)

	runner := ingest.NewRunner(st, sink, metrics, opts)
	return runJobs(ctx, runner, kind, files, ids, cfg.Ingest.MaxConcurrentFiles, cmd.OutOrStdout())
}

// failJobs marks every job failed with cause when no run could start.
func failJobs(ctx context.Context, sink progress.Sink, kind model.Kind, files, ids []string, cause error, out io.Writer) {
	for i, path := range files {
		sink.Report(ctx, ids[i], progress.Update{
			Status:  model.JobFailed,
			Message: cause.Error(),
			Fields: map[string]any{
				"filename":  path,
				"file_type": string(kind),
			},
		})
		_, _ = fmt.Fprintf(out, "%s\tfailed\t%s\n", ids[i], cause)
	}
	zap.L().Error("ingest not started", zap.Strings("job_ids", ids), zap.Error(cause))
}

type jobRunner interface {
	Run(ctx context.Context, job *model.Job) (*ingest.Summary, error)
}

func runJobs(ctx context.Context, runner jobRunner, kind model.Kind, files, ids []string, limit int, out io.Writer) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]string, len(files))
	for i, path := range files {
		job := &model.Job{ID: ids[i], Path: path, Kind: kind}
		g.Go(func() error {
			sum, err := runner.Run(ctx, job)
			if err != nil {
				results[i] = fmt.Sprintf("%s\tfailed\t%s", job.ID, err)
				return eris.Wrapf(err, "ingest %s", path)
			}
			results[i] = fmt.Sprintf("%s\tcompleted\t%s", job.ID, sum.Message())
			return nil
		})
	}
	err := g.Wait()

	for _, line := range results {
		_, _ = fmt.Fprintln(out, line)
	}
	if err != nil {
		zap.L().Error("ingest finished with failures", zap.Int("files", len(files)), zap.Error(err))
	}
	return err
}
