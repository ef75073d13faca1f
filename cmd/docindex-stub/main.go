// Command docindex-stub serves the document API from memory for local
// development against the docindex client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/config"
	logpkg "github.com/kailas-cloud/docindex/internal/logger"
	documentrepo "github.com/kailas-cloud/docindex/internal/repository/document"
	"github.com/kailas-cloud/docindex/internal/transport/rest"
	"github.com/kailas-cloud/docindex/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfgPath := flag.String("config", config.DefaultPath(env), "path to YAML config file")
	port := flag.Int("port", 0, "listen port (overrides stub.port)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *port > 0 {
		cfg.Stub.Port = *port
	}
	if err := cfg.ValidateStub(); err != nil {
		panic("invalid config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docindex stub server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.Stub.Port),
		zap.Int("api_keys", len(cfg.Stub.APIKeys)),
	)
	if len(cfg.Stub.APIKeys) == 0 {
		logger.Warn("No API keys configured, authentication disabled")
	}

	server := rest.NewServer(documentrepo.New())
	handler := rest.NewRouter(server, cfg.Stub.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Stub.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Stub.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Stub.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
