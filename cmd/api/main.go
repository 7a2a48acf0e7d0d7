package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/flux/internal/app"
	"github.com/MrJamesThe3rd/flux/internal/config"
	fluxHttp "github.com/MrJamesThe3rd/flux/internal/http"
	exportHandler "github.com/MrJamesThe3rd/flux/internal/http/export"
	syncHandler "github.com/MrJamesThe3rd/flux/internal/http/sync"
	txHandler "github.com/MrJamesThe3rd/flux/internal/http/transaction"
	"github.com/MrJamesThe3rd/flux/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("app", cfg.App.Name)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.New()

	flux, err := app.Bootstrap(ctx, cfg, logger, recorder)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer flux.Close()

	go func() {
		for name, err := range flux.SyncReady(ctx) {
			if err != nil {
				logger.Warn("startup sync failed", "adapter", name, "error", err)
			}
		}
	}()

	var (
		transactionH = txHandler.NewHandler(flux)
		syncH        = syncHandler.NewHandler(flux)
		exportH      = exportHandler.NewHandler(flux)
	)

	router := fluxHttp.New(transactionH, syncH, exportH, fluxHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
		Metrics:     recorder.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
