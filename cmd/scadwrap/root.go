package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	"github.com/yannickbattail/scadwrap/internal/config"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

var (
	appConfig *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scadwrap",
	Short: "scadwrap drives the OpenSCAD command line",
	Long: `scadwrap builds OpenSCAD command lines from a typed configuration, manages the
temporary parameter and summary files of every invocation and returns structured results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}
		return loadSettings(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if cli.IsInterrupted(err) {
			cli.PrintSystemMessage("Interrupted.")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (default ./scadwrap.yaml when present)")
	flags.String("env-file", ".env", "Environment file loaded before the configuration")
	flags.String("executable", "", "Command used to start OpenSCAD, e.g. 'xvfb-run openscad'")
	flags.StringP("output-dir", "o", "", "Directory receiving generated files")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Bool("strict", false, "Validate parameters against the model definition before each call")
	flags.Bool("json", false, "Print results as JSON")
	flags.BoolP("verbose", "v", false, "Mirror OpenSCAD output to stderr")
}

// loadSettings resolves the configuration (file, environment, flags) and the logger.
func loadSettings(cmd *cobra.Command) error {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("executable") {
		cfg.OpenSCAD.Executable, _ = flags.GetString("executable")
	}
	if flags.Changed("output-dir") {
		cfg.OpenSCAD.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	appConfig = cfg
	appLogger = logger
	return nil
}

// newRuntime wires the collaborators for the current command.
func newRuntime(cmd *cobra.Command, opts ...cli.RuntimeOption) (*cli.Runtime, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, cli.WithEcho(os.Stderr))
	}
	return cli.NewRuntime(appConfig, appLogger, opts...)
}
