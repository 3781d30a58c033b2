package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/progress"
)

var (
	jobListLimit int
	jobListKind  string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect ingestion job progress",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status ID",
	Short: "Show the progress entry of one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rep, closeFn, err := jobReporter()
		if err != nil {
			return err
		}
		defer closeFn()

		entry, err := rep.Get(ctx, args[0])
		if errors.Is(err, progress.ErrNotFound) {
			return eris.Errorf("job %s not found (entries expire after %s)", args[0], cfg.Progress.TTL)
		}
		if err != nil {
			return eris.Wrap(err, "job status")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(entry), "job status")
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent job entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		var kind model.Kind
		if jobListKind != "" {
			k, err := model.ParseKind(jobListKind)
			if err != nil {
				return err
			}
			kind = k
		}

		rep, closeFn, err := jobReporter()
		if err != nil {
			return err
		}
		defer closeFn()

		entries, err := rep.Recent(ctx, jobListLimit)
		if err != nil {
			return eris.Wrap(err, "job list")
		}
		if kind != "" {
			entries = entriesOfKind(entries, kind)
		}
		formatJobEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	jobListCmd.Flags().IntVar(&jobListLimit, "limit", progress.DefaultRecent, "maximum number of entries")
	jobListCmd.Flags().StringVar(&jobListKind, "kind", "", "only show jobs of this kind (registry, suppression, sales)")
	jobCmd.AddCommand(jobStatusCmd, jobListCmd)
	rootCmd.AddCommand(jobCmd)
}

func jobReporter() (*progress.Reporter, func(), error) {
	if err := cfg.Validate("job"); err != nil {
		return nil, nil, err
	}
	rdb, err := openRedis()
	if err != nil {
		return nil, nil, err
	}
	return newReporter(rdb), func() { _ = rdb.Close() }, nil
}

// entriesOfKind keeps the entries whose file_type is kind.
func entriesOfKind(entries []map[string]any, kind model.Kind) []map[string]any {
	out := entries[:0:0]
	for _, e := range entries {
		if field(e, "file_type") == string(kind) {
			out = append(out, e)
		}
	}
	return out
}

// formatJobEntries writes one line per job entry to w.
func formatJobEntries(out io.Writer, entries []map[string]any) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "JOB\tSTATUS\tPROGRESS\tUPDATED\tMESSAGE")
	_, _ = fmt.Fprintln(w, "---\t------\t--------\t-------\t-------")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%s\n",
			field(e, "job_id"),
			field(e, "status"),
			field(e, "current"),
			field(e, "total"),
			field(e, "updated_at"),
			truncate(field(e, "message"), 60),
		)
	}
	_ = w.Flush()
}

// field renders a decoded JSON value. Numbers decode as float64.
func field(e map[string]any, key string) string {
	switch v := e[key].(type) {
	case nil:
		return "-"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
