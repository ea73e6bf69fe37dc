package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	httpAdapter "github.com/yannickbattail/scadwrap/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON API. Model names in requests are resolved against the
models directory (server.models_dir); invocation events are streamed on /v1/events
and Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			appConfig.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("models") {
			appConfig.Server.ModelsDir, _ = cmd.Flags().GetString("models")
		}

		rt, err := newRuntime(cmd, cli.WithStreams())
		if err != nil {
			return err
		}
		defer rt.Close()

		server, err := httpAdapter.NewServer(httpAdapter.Config{
			Clients:   httpClients(rt),
			Defaults:  appConfig.OpenSCAD,
			Store:     rt.Store,
			Stitcher:  rt.Stitcher,
			Streams:   rt.Streams,
			Gatherer:  rt.Registry,
			Logger:    appLogger,
			ModelsDir: appConfig.Server.ModelsDir,
		})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", appConfig.Server.Port),
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			appLogger.Info("Starting scadwrap server", "address", srv.Addr, "models", appConfig.Server.ModelsDir)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			appLogger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			appLogger.Info("scadwrap server stopped gracefully")
			return nil
		}
	},
}

// httpClients resolves request model names below the models directory.
func httpClients(rt *cli.Runtime) httpAdapter.ClientFactory {
	return func(model string) (httpAdapter.Client, error) {
		path, err := httpAdapter.ResolveModel(appConfig.Server.ModelsDir, model)
		if err != nil {
			return nil, err
		}
		c, err := rt.Client(path)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("models", "", "Directory model names are resolved against")
}
