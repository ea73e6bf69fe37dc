package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results [id]",
	Short: "List persisted results, or show one",
	Long: `Reads the result store configured in store.driver. The memory driver only
lives for one process, so use the file or redis driver to inspect past runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 1 {
			rec, err := rt.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		}

		ids, err := rt.Store.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonMode(cmd) {
			return printJSON(cmd, ids)
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}
