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

	"github.com/RichardoC/lumi/internal/api"
	"github.com/RichardoC/lumi/internal/app"
	"github.com/RichardoC/lumi/internal/config"
	"github.com/RichardoC/lumi/internal/observability"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start session",
			zap.Error(err),
			zap.String("store", string(cfg.Store)))
	}

	handler := api.NewHandler(session, logger.Named("api"))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Routes(cfg.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", zap.Error(err))
	}
	if err := session.Close(); err != nil {
		logger.Error("failed to close session", zap.Error(err))
	}
}
