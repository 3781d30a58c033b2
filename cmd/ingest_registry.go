package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/model"
)

var (
	registryFiles []string
	registryJobID string
)

var ingestRegistryCmd = &cobra.Command{
	Use:     "registry",
	Aliases: []string{"dnc"},
	Short:   "Load do-not-call registry number lists",
	Long: "Loads one or more line-oriented registry files. The jurisdiction is taken from each file name; " +
		"numbers already stored are left untouched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIngest(cmd, model.KindRegistry, registryFiles, registryJobID, runnerOptions())
	},
}

func init() {
	ingestRegistryCmd.Flags().StringArrayVar(&registryFiles, "file", nil, "registry file to load (repeatable)")
	ingestRegistryCmd.Flags().StringVar(&registryJobID, "job-id", "", "progress job ID (generated when empty)")
	_ = ingestRegistryCmd.MarkFlagRequired("file")
	ingestCmd.AddCommand(ingestRegistryCmd)
}
