package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Notifuse/notifuse/config"
	"github.com/Notifuse/notifuse/internal/app"
)

// osExit is a variable to allow mocking os.Exit in tests.
var osExit = os.Exit

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application := app.NewApp(cfg)

	if err := application.Initialize(); err != nil {
		application.GetLogger().WithField("error", err.Error()).Fatal("failed to initialize application")
		osExit(1)
		return
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := application.Start(); err != nil {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		application.GetLogger().WithField("error", err.Error()).Fatal("server failed to start")
		osExit(1)
		return
	case sig := <-sigCh:
		application.GetLogger().WithField("signal", sig.String()).Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		application.GetLogger().WithField("error", err.Error()).Error("shutdown completed with errors")
		osExit(1)
	}
}
