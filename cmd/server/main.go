package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/bootstrap"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/handler"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/router"
	"github.com/clipforge/clipforge/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger, err := do.Invoke[*zap.Logger](inj)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	if _, err := telemetry.SetupMetrics(cfg); err != nil {
		logger.Fatal("failed to set up metrics", zap.Error(err))
	}
	if err := telemetry.InitEditMetrics(); err != nil {
		logger.Fatal("failed to init edit metrics", zap.Error(err))
	}

	r := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		Log:             logger,
		ProjectHandler:  do.MustInvoke[*handler.ProjectHandler](inj),
		FileHandler:     do.MustInvoke[*handler.FileHandler](inj),
		ChatHandler:     do.MustInvoke[*handler.ChatHandler](inj),
		SandboxHandler:  do.MustInvoke[*handler.SandboxHandler](inj),
		ToolHandler:     do.MustInvoke[*handler.ToolHandler](inj),
		SettingsHandler: do.MustInvoke[*handler.SettingsHandler](inj),
	})

	// Warm the model provider in the background; requests fail fast with a
	// clear error until it is ready, and /agent/start can retry.
	gateway := do.MustInvoke[*service.ModelGateway](inj)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := gateway.Start(ctx); err != nil {
			logger.Warn("model gateway did not start", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    cfg.App.Addr(),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		logger.Error("tracing shutdown failed", zap.Error(err))
	}
	if err := telemetry.ShutdownMetrics(ctx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}
	if err := inj.Shutdown(); err != nil {
		logger.Error("container shutdown failed", zap.Error(err))
	}
}
