package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export <model.scad>",
	Short: "Export a model to a 3D or 2D format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("format")
		format, err := domain.ParseExportFormat(name)
		if err != nil {
			return err
		}
		in, err := parameterInput(cmd)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		client, err := rt.Client(args[0])
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		res, err := client.Export(ctx, in, format)
		if err != nil {
			return err
		}
		return printSummary(cmd, res)
	},
}

var formatsCmd = &cobra.Command{
	Use:         "formats",
	Short:       "List the export formats",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FORMAT\tFAMILY\tEXTENSION")
		for _, f := range domain.Formats() {
			if f.Internal() || f.Family() == domain.FamilyText {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t.%s\n", f, f.Family(), f.Extension())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(formatsCmd)
	addParameterFlags(exportCmd)
	exportCmd.Flags().StringP("format", "f", string(domain.FormatSTL), "Export format (see 'scadwrap formats')")
}
