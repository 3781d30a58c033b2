package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dnc-processor/internal/jurisdiction"
	"github.com/sells-group/dnc-processor/internal/model"
	"github.com/sells-group/dnc-processor/internal/store"
)

var (
	clearState string
	clearYes   bool
)

var dbClearStateCmd = &cobra.Command{
	Use:   "clear-state",
	Short: "Delete the registry numbers of one jurisdiction",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		state := strings.ToUpper(strings.TrimSpace(clearState))
		if state != model.UnknownJurisdiction && !jurisdiction.Valid(state) {
			return eris.Errorf("unknown jurisdiction code %q", clearState)
		}
		if err := requireConfirm(clearYes, "clear-state "+state); err != nil {
			return err
		}
		return withStore(ctx, func(st *store.PostgresStore) error {
			n, err := st.ClearJurisdiction(ctx, state)
			if err != nil {
				return eris.Wrap(err, "db clear-state")
			}
			zap.L().Info("jurisdiction cleared", zap.String("state", state), zap.Int64("deleted", n))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d numbers for %s\n", n, state)
			return nil
		})
	},
}

func init() {
	dbClearStateCmd.Flags().StringVar(&clearState, "state", "", "jurisdiction code, e.g. TX or UNKNOWN (required)")
	dbClearStateCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm the deletion")
	_ = dbClearStateCmd.MarkFlagRequired("state")
	dbCmd.AddCommand(dbClearStateCmd)
}
