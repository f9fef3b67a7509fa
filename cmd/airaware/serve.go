package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/airaware/internal/api/http"
	"github.com/i474232898/airaware/internal/scheduler"
)

func (c *cli) newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API and run the daily reset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.Config.Listen
			}

			// Startup mirrors the interactive page: restore and show a city.
			if _, err := a.Orchestrator.Start(ctx); err != nil {
				slog.Warn("initial air quality load failed", "error", err)
			}

			sched := scheduler.New(a.Orchestrator, a.Config.DailyResetAt)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			server := httpapi.NewApp(a.Orchestrator, a.Registry)

			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", listen)
				errCh <- server.Listen(listen)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.ShutdownWithContext(shutdownCtx); err != nil {
				slog.Error("error during shutdown", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")
	return cmd
}
