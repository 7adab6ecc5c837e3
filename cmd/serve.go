package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"twoogle/internal/app/board"
	"twoogle/internal/app/live"
	"twoogle/internal/app/storage"
	"twoogle/internal/handler"
	"twoogle/internal/pkg/logx"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the live feed",
		Long: `Run the HTTP front end of the board.

Examples:
  twoogle serve --port 8080
  twoogle serve --driver postgres --database-url postgres://localhost/twoogle`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logCloser, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logx.Logger().Info().
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Starting HTTP front end")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub()
	go hub.Run()

	svc := openService(ctx, cfg, board.Options{Notifier: hub})
	defer svc.Close()

	var avatars storage.StorageService
	if cfg.AvatarsEnabled() {
		avatars, err = storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
	} else {
		logx.Info("S3 settings missing, avatar uploads disabled")
	}

	router := handler.Router(ctx, &handler.AppDeps{
		Config:         cfg,
		Service:        svc,
		Hub:            hub,
		StorageService: avatars,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("Twoogle Server starting", "addr", "http://localhost"+serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Listeners are hijacked connections that Shutdown does not wait for.
	hub.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
		return err
	}

	logx.Info("Server gracefully stopped.")
	return nil
}
