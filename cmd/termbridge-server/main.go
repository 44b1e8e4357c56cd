package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/handlers"

	"termbridge-backend/internal/config"
	"termbridge-backend/internal/logging"
	"termbridge-backend/internal/server"
)

func main() {
	cfg := config.Load()

	logger, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	defer logging.CloseFile()

	s, err := server.NewServer(cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	slog.Info("termbridge server listening", "addr", addr)
	handler := handlers.CombinedLoggingHandler(os.Stdout, s.Router())
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
