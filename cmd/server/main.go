package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/canhigher/ing-hubs-case/internal/api"
	"github.com/canhigher/ing-hubs-case/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	go bootstrap.Hub.Run(ctx)

	server := api.NewServer(bootstrap.Assets, bootstrap.Orders, bootstrap.Auth, bootstrap.Tokens, bootstrap.Hub, slog.Default())
	httpServer := &http.Server{
		Addr:    bootstrap.Config.Server.Addr,
		Handler: server.Handler(),
	}

	go func() {
		slog.Info("brokerage API listening", slog.String("addr", bootstrap.Config.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), bootstrap.Config.ShutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}
