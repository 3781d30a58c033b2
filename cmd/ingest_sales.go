package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/model"
)

var (
	salesFile  string
	salesJobID string
	salesSheet string
)

var ingestSalesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Load a sales transaction file",
	Long:  "Replaces the sales table with one canonical record per primary number from a delimited or spreadsheet file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := runnerOptions()
		opts.Sheet = salesSheet
		return runIngest(cmd, model.KindSales, []string{salesFile}, salesJobID, opts)
	},
}

func init() {
	ingestSalesCmd.Flags().StringVar(&salesFile, "file", "", "sales file to load (required)")
	ingestSalesCmd.Flags().StringVar(&salesJobID, "job-id", "", "progress job ID (generated when empty)")
	ingestSalesCmd.Flags().StringVar(&salesSheet, "sheet", "", "worksheet to read from spreadsheet files (default: first sheet)")
	_ = ingestSalesCmd.MarkFlagRequired("file")
	ingestCmd.AddCommand(ingestSalesCmd)
}
