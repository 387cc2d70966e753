package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staylane/internal/app"
	"staylane/internal/server"

	logger "github.com/Bparsons0904/goLogger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New("main")

	if err := run(log); err != nil {
		log.Er("api exited with error", err)
		os.Exit(1)
	}

	log.Info("Graceful shutdown complete")
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests before the
// scheduler, event bus and database are closed.
func run(log logger.Logger) error {
	log = log.Function("run")

	application, err := app.New()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	appServer, err := server.New(application)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- appServer.Listen(application.Config.ServerPort)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := appServer.FiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Er("server forced to shutdown", err)
	}

	return nil
}
