package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/model"
)

var (
	suppressionFile   string
	suppressionJobID  string
	suppressionAppend bool
	suppressionSheet  string
)

var ingestSuppressionCmd = &cobra.Command{
	Use:   "suppression",
	Short: "Load a suppression commodity file",
	Long: "Loads a delimited or spreadsheet file with serv_phone_num and commodity columns. " +
		"The table is replaced unless --append is given, in which case labels merge with stored ones.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := runnerOptions()
		opts.Sheet = suppressionSheet
		if suppressionAppend {
			opts.ReplaceExisting = false
		}
		return runIngest(cmd, model.KindSuppression, []string{suppressionFile}, suppressionJobID, opts)
	},
}

func init() {
	ingestSuppressionCmd.Flags().StringVar(&suppressionFile, "file", "", "suppression file to load (required)")
	ingestSuppressionCmd.Flags().StringVar(&suppressionJobID, "job-id", "", "progress job ID (generated when empty)")
	ingestSuppressionCmd.Flags().BoolVar(&suppressionAppend, "append", false, "merge into existing records instead of replacing them")
	ingestSuppressionCmd.Flags().StringVar(&suppressionSheet, "sheet", "", "worksheet to read from spreadsheet files (default: first sheet)")
	_ = ingestSuppressionCmd.MarkFlagRequired("file")
	ingestCmd.AddCommand(ingestSuppressionCmd)
}
