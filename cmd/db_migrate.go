package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/store"
)

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the destination tables if they do not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(st *store.PostgresStore) error {
			if err := st.EnsureSchema(ctx); err != nil {
				return eris.Wrap(err, "db migrate")
			}
			zap.L().Info("schema is up to date", zap.Strings("tables", store.Tables))
			return nil
		})
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
}
