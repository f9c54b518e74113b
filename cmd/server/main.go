// Package main is the entry point for the clinic records server.
//
// The main package stays minimal: read configuration from the environment,
// create the logger, hand everything to internal/server. All actual logic
// lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tahmid-dev/clinic-records/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// PORT defaults to 8080.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH allows overriding for production deployments,
	// e.g. DB_PATH=/var/lib/clinic/records.db
	dbPath := "data/clinic.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The session cookie's Secure flag is on unless we're explicitly in
	// local development — cookies over plain HTTP are acceptable only there.
	appEnv := os.Getenv("APP_ENV")
	secureCookie := appEnv != "" && appEnv != "development" && appEnv != "local"
	if !secureCookie {
		logger.Warn("running in development mode — session cookie is not marked Secure")
	}

	cfg := server.Config{
		Port:         port,
		DBPath:       dbPath,
		SecureCookie: secureCookie,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
