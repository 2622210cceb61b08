// Command demoserver serves an in-memory Thoth User API for trying thamos locally.
// Usage: go run ./cmd/demoserver [port]
// Default port: 8080
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/server"
)

func main() {
	cfg := server.DefaultConfig()
	cfg.RateLimit = 50
	cfg.Burst = 100

	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.ListenAddr = fmt.Sprintf(":%d", port)
	}

	logger := logging.NewStderrLogger("demoserver", os.Getenv("THAMOS_DEBUG") != "")
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger

	srv := server.NewServer(cfg).HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving demo User API",
		logging.Field{Key: "addr", Value: cfg.ListenAddr},
		logging.Field{Key: "api", Value: "http://localhost" + cfg.ListenAddr + "/api/v1"},
		logging.Field{Key: "swagger", Value: "http://localhost" + cfg.ListenAddr + "/api/v1/swagger/index.html"},
		logging.Field{Key: "failure_marker", Value: server.FailureMarker})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
