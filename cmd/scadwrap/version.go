package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap"
	"github.com/yannickbattail/scadwrap/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number of scadwrap",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scadwrap version %s\n", strings.TrimSpace(scadwrap.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
