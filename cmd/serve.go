package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/radgen/radgen/internal/classifier"
	"github.com/radgen/radgen/internal/config"
	"github.com/radgen/radgen/internal/handlers"
	"github.com/radgen/radgen/internal/report"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the X-ray analysis interface",
		Long: `Starts the Radgen web interface on the specified port.

The web interface allows you to upload chest X-ray images, review the
classification and AI-drafted report, and download the result as PDF.`,
		Example: `  # Start server on default port 8888
  radgen serve

  # Start server on custom port
  radgen serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			srv, err := classifier.NewServer(cfg.ModelPath, cfg.MetadataPath)
			if err != nil {
				return err
			}
			defer srv.Close()

			reports, err := report.NewService(cfg.Provider, cfg.ProviderModel, true)
			if err != nil {
				return err
			}

			handler := handlers.New(srv, reports, cfg.UploadsDir, cfg.StaticDir)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/analyze", handler.HandleAnalyze)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Radgen interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")

	return cmd
}
