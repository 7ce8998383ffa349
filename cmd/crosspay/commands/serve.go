// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command running the full engine.
func NewServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the payment engine",
		Long: `Runs the scheduler, the worker pool, and the metrics endpoint until
interrupted. Jobs left active by a previous crash are picked up again once
their lease expires.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			container, err := app.Container()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Metrics endpoint.
			var metricsServer *http.Server
			if addr := container.Config.Metrics.ListenAddr; addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				metricsServer = &http.Server{
					Addr:              addr,
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						container.Logger.Error("Metrics server failed", "error", err)
					}
				}()
				container.Logger.Info("Metrics endpoint listening", "addr", addr)
			}

			if err := container.Queue.Start(ctx); err != nil {
				return err
			}

			schedulerDone := make(chan error, 1)
			go func() {
				schedulerDone <- container.Scheduler.Run(ctx)
			}()

			container.Logger.Info("Engine started",
				"workers", container.Config.Queue.Concurrency,
				"scheduler_interval", container.Config.Scheduler.Interval.String(),
			)

			<-ctx.Done()
			container.Logger.Info("Shutting down")

			// The scheduler stops feeding the queue first, then the pool
			// drains its in-flight jobs.
			if err := <-schedulerDone; err != nil && !errors.Is(err, context.Canceled) {
				container.Logger.Error("Scheduler stopped with error", "error", err)
			}
			container.Queue.Stop()

			if metricsServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(shutdownCtx)
			}

			container.Logger.Info("Engine stopped")
			return nil
		},
	}

	return cmd
}
