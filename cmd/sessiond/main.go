package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/billsync/internal/config"
	"github.com/mmynk/billsync/internal/sessiond"
	"github.com/mmynk/billsync/pkg/logging"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sessiond.NewStore(cfg.Sessiond.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Sessiond.DBPath)

	minter := sessiond.NewTokenMinter(cfg.Sessiond.TokenSecret, cfg.Sessiond.TokenTTL)
	server := sessiond.NewServer(store, minter)

	addr := fmt.Sprintf(":%d", cfg.Sessiond.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Session backend starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := httpServer.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
