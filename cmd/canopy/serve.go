package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/willbeason/fractal-canopy/internal/metrics"
	"github.com/willbeason/fractal-canopy/internal/server"
	"github.com/willbeason/fractal-canopy/pkg/params"
	"github.com/willbeason/fractal-canopy/pkg/render"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the canopy over HTTP",
		Long: `Keeps a canopy in memory and redraws it whenever a parameter or the surface
size is changed over HTTP. The current drawing is served at /canopy.png.`,
		Args: cobra.ExactArgs(0),
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "address to listen on (default :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}

	canvas := render.NewCanvas(cfg.Width, cfg.Height)
	defer canvas.Close()

	store, err := params.NewStore(canvas, cfg.Parameters(),
		params.WithLogger(logger),
		params.WithObserver(collector),
		params.WithMaxAmount(cfg.MaxAmount),
		params.WithMaxSurface(cfg.MaxSurface),
	)
	if err != nil {
		return err
	}

	err = store.Redraw()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewHandler(&server.Server{Store: store, Canvas: canvas, Logger: logger}, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting canopy server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return err

	case <-ctx.Done():
		logger.Info("shutting down")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}

		err := <-serverErrors
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
