// @title Farmalytics API
// @version 1.0
// @description Sales and inventory analytics for pharmacy and retail spreadsheets.

// @host localhost:8080
// @BasePath /api
// @schemes http

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"farmalytics/internal/config"
	"farmalytics/server"
)

func main() {
	log.Println("Starting farmalytics server...")

	cfg := config.Load()
	setupLogger(cfg.LogLevel)

	for _, dir := range []string{cfg.UploadsDir, cfg.ReportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	log.Printf("API available at http://localhost:%s/api", cfg.Port)
	log.Printf("Swagger UI at http://localhost:%s/swagger/index.html", cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	} else {
		log.Println("Server stopped")
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
