package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	httpAdapter "github.com/yannickbattail/scadwrap/pkg/adapters/http"
	"github.com/yannickbattail/scadwrap/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes parameter extraction, image rendering, animation and export as MCP tools,
so AI agents can drive OpenSCAD.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if cmd.Flags().Changed("models") {
			appConfig.Server.ModelsDir, _ = cmd.Flags().GetString("models")
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(func(model string) (mcp.Client, error) {
			path, err := httpAdapter.ResolveModel(appConfig.Server.ModelsDir, model)
			if err != nil {
				return nil, err
			}
			c, err := rt.Client(path)
			if err != nil {
				return nil, err
			}
			return c, nil
		}, appConfig.OpenSCAD, appLogger, mcp.WithModelsDir(appConfig.Server.ModelsDir))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			appLogger.Info("Starting scadwrap MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			appLogger.Info("Starting scadwrap MCP Server (SSE)", "port", port)

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			appLogger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("models", "", "Directory model names are resolved against")
}
