package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clashlane/internal/arena"
	"clashlane/internal/config"
	"clashlane/internal/data"
	"clashlane/internal/flavor"
	"clashlane/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("failed to load config", err, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Profiles are optional; without a database every player is a guest.
	var store arena.Store
	if cfg.Database.URL != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		s, err := data.Open(openCtx, cfg.Database.URL)
		cancel()
		if err != nil {
			logging.Fatal("failed to open profile store", err, nil)
		}
		defer s.Close()
		store = s
	} else {
		logging.Warn("no database configured, results will not be recorded", nil)
	}

	// 2. Generated text is optional too; the fallback table covers everything.
	var gen flavor.Generator
	if cfg.Flavor.APIKey != "" {
		gen = flavor.NewClient(cfg.Flavor.Endpoint, cfg.Flavor.APIKey, cfg.Flavor.Timeout)
	}

	srv := arena.NewServer(ctx, cfg, store, gen)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logging.Error("shutdown", err, nil)
		}
	}()

	logging.Info("server starting", logging.Fields{
		"port":       cfg.Server.Port,
		"tier":       cfg.Tier().String(),
		"frame_rate": cfg.Server.FrameRate,
		"profiles":   store != nil,
		"generated":  gen != nil,
		"audio":      cfg.Audio.Enabled,
	})
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("ListenAndServe", err, nil)
	}
	logging.Info("server stopped", nil)
}
