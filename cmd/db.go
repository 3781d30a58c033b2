package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and maintain the destination tables",
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

// withStore validates the store settings and runs fn on an open store.
func withStore(ctx context.Context, fn func(*store.PostgresStore) error) error {
	if err := cfg.Validate("db"); err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

func requireConfirm(yes bool, action string) error {
	if !yes {
		return eris.Errorf("%s is destructive; rerun with --yes to confirm", action)
	}
	return nil
}
