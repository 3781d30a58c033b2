package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dnc-processor/internal/phone"
	"github.com/sells-group/dnc-processor/internal/store"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup NUMBER",
	Short: "Show every stored record for a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		number, err := parseLookupNumber(args[0])
		if err != nil {
			return err
		}
		return withStore(ctx, func(st *store.PostgresStore) error {
			res, err := st.Lookup(ctx, number)
			if err != nil {
				return eris.Wrap(err, "lookup")
			}
			if !res.Found() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d: no records\n", number)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(res), "lookup")
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func parseLookupNumber(raw string) (int64, error) {
	d := phone.Digits(raw)
	if d == "" {
		return 0, eris.Errorf("%q contains no digits", raw)
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse %q", raw)
	}
	return n, nil
}
