package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hellybrine/terraforms/internal/metrics"
	"github.com/hellybrine/terraforms/internal/server"
	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/policy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the image-resize API and run scheduled cost evaluations",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Resizer.Bucket == "" {
		return fmt.Errorf("resizer.bucket must be configured")
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	engine, store, clients, err := initEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()
	bucket := cloud.NewS3Bucket(clients.S3, cfg.Resizer.Bucket)
	apiServer := server.NewServer(bucket, server.Config{
		MaxWidth:    cfg.Resizer.MaxWidth,
		MaxHeight:   cfg.Resizer.MaxHeight,
		MaxBodySize: cfg.Resizer.MaxBodySize,
	}, m, logger)

	scheduler := policy.NewScheduler(engine, cfg.Schedule, logger)
	scheduler.OnReport = m.ObserveEvaluation
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 60 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sentinel started", "listen", cfg.Server.Listen, "schedule", cfg.Schedule)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}
