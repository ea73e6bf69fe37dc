package main

import (
	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
)

var paramsCmd = &cobra.Command{
	Use:   "params <model.scad>",
	Short: "Extract the customizer parameters of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		res, err := client.ParameterDefinition(ctx)
		if err != nil {
			return err
		}
		return printDefinition(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
