package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/config"
	"github.com/napolitain/tycoon/internal/loader"
	"github.com/napolitain/tycoon/internal/platform/logger"
	"github.com/napolitain/tycoon/internal/session"
	"github.com/napolitain/tycoon/internal/store"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML config file")
	settingsPath = flag.String("settings", "", "Path to the settings document (overrides config)")
	dbPath       = flag.String("db", "", "Path to the save database (overrides config)")
	listenAddr   = flag.String("addr", "", "Listen address (overrides config)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *settingsPath != "" {
		cfg.SettingsPath = *settingsPath
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	color.NoColor = color.NoColor || !cfg.ColorEnabled()

	lg := logger.NewLogger()

	settings, err := loader.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	lg.Info("loaded settings %s (tick %s, %d slots)", cfg.SettingsPath, settings.TickInterval, settings.MaxSaveSlots)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBPath, settings.MaxSaveSlots)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	clk := clock.RealClock{}
	manager := session.NewManager(st, settings, clk, lg, cfg.AutosaveEveryTicks)
	srv := newServer(settings, st, manager, clk, lg)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("tycoon server listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Error("http shutdown: %v", err)
	}
	if err := manager.Close(shutdownCtx); err != nil {
		lg.Error("saving sessions: %v", err)
		os.Exit(1)
	}
}
