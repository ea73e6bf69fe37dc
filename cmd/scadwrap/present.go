package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	"github.com/yannickbattail/scadwrap/internal/presentation/tui"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

func addParameterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("param", "D", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().String("param-file", "", "Existing parameter set file")
	cmd.Flags().StringP("group", "P", "", "Parameter group (required with --param-file)")
}

func parameterInput(cmd *cobra.Command) (domain.ParameterInput, error) {
	var f cli.ParameterFlags
	f.Params, _ = cmd.Flags().GetStringArray("param")
	f.File, _ = cmd.Flags().GetString("param-file")
	f.Group, _ = cmd.Flags().GetString("group")
	return f.Input()
}

func jsonMode(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(cmd *cobra.Command, res *domain.SummaryResult) error {
	if jsonMode(cmd) {
		return printJSON(cmd, res)
	}
	return tui.NewPresenter(cmd.OutOrStdout()).Summary(res)
}

func printDefinition(cmd *cobra.Command, res *domain.DefinitionResult) error {
	if jsonMode(cmd) {
		return printJSON(cmd, res)
	}
	return tui.NewPresenter(cmd.OutOrStdout()).Definition(res)
}
