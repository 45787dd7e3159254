// Command designer starts the theme designer API server.
// Configuration comes from DESIGNER_* environment variables; a .env file in
// the working directory is loaded first when present.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nodepress/designer/internal/app"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger, err := logging.NewZerologLogger(os.Stdout, os.Getenv("DESIGNER_LOG_LEVEL"))
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	cfg := app.FromEnv()
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		log.Fatalf("starting application: %v", err)
	}

	srv, err := server.NewServer(server.Config{ListenAddr: cfg.ListenAddr, Logger: logger}, application)
	if err != nil {
		log.Fatalf("starting server: %v", err)
	}

	httpServer := srv.HTTPServer()
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
		if err := httpServer.ListenAndServe(); err != nil {
			logger.Error("http server stopped", logging.Field{Key: "error", Value: err.Error()})
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
	if err := application.Shutdown(ctx); err != nil {
		logger.Warn("application shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
}
