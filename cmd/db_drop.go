package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/store"
)

var dropYes bool

var dbDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every destination table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := requireConfirm(dropYes, "drop"); err != nil {
			return err
		}
		return withStore(ctx, func(st *store.PostgresStore) error {
			if err := st.DropAll(ctx); err != nil {
				return eris.Wrap(err, "db drop")
			}
			zap.L().Warn("destination tables dropped", zap.Strings("tables", store.Tables))
			return nil
		})
	},
}

func init() {
	dbDropCmd.Flags().BoolVar(&dropYes, "yes", false, "confirm dropping all tables")
	dbCmd.AddCommand(dbDropCmd)
}
