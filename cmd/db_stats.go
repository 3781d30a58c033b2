package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dnc-processor/internal/store"
)

var statsFormat string

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per table and per jurisdiction",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(st *store.PostgresStore) error {
			stats, err := st.Stats(ctx)
			if err != nil {
				return eris.Wrap(err, "db stats")
			}
			return writeStats(cmd.OutOrStdout(), stats, statsFormat)
		})
	},
}

func init() {
	dbStatsCmd.Flags().StringVar(&statsFormat, "format", "table", "output format: table, json or yaml")
	dbCmd.AddCommand(dbStatsCmd)
}

func writeStats(out io.Writer, stats *store.Stats, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(stats), "encode stats")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return eris.Wrap(err, "encode stats")
		}
		return eris.Wrap(enc.Close(), "encode stats")
	case "table", "":
		formatStats(out, stats)
		return nil
	default:
		return eris.Errorf("unknown format %q (valid: table, json, yaml)", format)
	}
}

// formatStats writes the table counts followed by the jurisdiction breakdown.
func formatStats(out io.Writer, stats *store.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	_, _ = fmt.Fprintln(w, "-----\t----")
	for _, table := range store.Tables {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", table, stats.Tables[table])
	}

	if len(stats.ByJurisdiction) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "STATE\tNUMBERS")
		_, _ = fmt.Fprintln(w, "-----\t-------")
		for _, sc := range stats.ByJurisdiction {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", sc.State, sc.Count)
		}
	}
	_ = w.Flush()
}
