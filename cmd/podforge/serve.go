package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/server"
	"github.com/podforge/podforge/internal/server/endpoints"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Podforge server",
	Long: `Start the Podforge HTTP server.

The server accepts podcast briefs, runs the generation pipeline in the
background, and serves job status, artifacts, and finished episodes.
Configuration changes are hot-reloaded while the server runs.

The server provides:
  - /healthz - Basic server health check
  - /readyz  - Readiness check (model backends and audio tools)

Examples:
  podforge serve                    # Start on default port 8080
  podforge serve --port 3000        # Start on custom port
  podforge serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgPath := cfgFile
		if cfgPath == "" && h.ConfigExists() {
			cfgPath = h.ConfigPath()
		}
		mgr, err := config.NewManager(cfgPath)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		cfg := mgr.Get()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(cfg.Log.Level),
		}))

		// Flags win; otherwise fall back to the configured listen address.
		host, port := serveHost, servePort
		if !cmd.Flags().Changed("host") && cfg.Server.Host != "" {
			host = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = strconv.Itoa(cfg.Server.Port)
		}

		srv, err := server.New(server.Config{
			Host:            host,
			Port:            port,
			Home:            h,
			ConfigManager:   mgr,
			Logger:          logger,
			SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

// slogLevel maps the configured log level string to a slog.Level.
func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
