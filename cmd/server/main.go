package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PikaChewey/Sharpey/internal/benchmark"
	"github.com/PikaChewey/Sharpey/internal/config"
	"github.com/PikaChewey/Sharpey/internal/resolver"
	"github.com/PikaChewey/Sharpey/internal/server"
	"github.com/PikaChewey/Sharpey/internal/source"
	"github.com/PikaChewey/Sharpey/internal/store"
	"github.com/PikaChewey/Sharpey/internal/validate"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] Sharpey starting...")

	// Load .env file if it exists (local dev)
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file found, using environment variables")
	}

	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Source chain in priority order. Sources without credentials are
	// still registered; their failures push traffic down the chain.
	av := source.NewAlphaVantage(cfg.Sources.AlphaVantage.APIKey, cfg.Sources.AlphaVantage.BaseURL)
	sources := []source.Source{
		av,
		source.NewFMP(cfg.Sources.FMP.APIKey, cfg.Sources.FMP.BaseURL),
		source.NewYahoo(cfg.Sources.Yahoo.BaseURL),
	}
	fallback := source.NewSynthetic()

	cache := resolver.NewTTLCache(resolver.CacheTTL, 5*time.Minute)
	res := resolver.New(sources, fallback, cache, resolver.NewFailureRegistry())

	validator := validate.New(av)

	// Leaderboard store: SQLite when configured, memory otherwise.
	var st store.PortfolioStore
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using memory: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
		}
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marks := benchmark.NewTracker(res)
	if err := marks.StartSchedule(ctx); err != nil {
		log.Fatalf("[FATAL] start benchmark refresh: %v", err)
	}
	defer marks.Stop()

	srv := server.New(res, validator, st, marks, cfg.Game.AllowFallback)
	e := srv.Echo()

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] server: %v", err)
		}
	}()
	log.Printf("[INFO] Sharpey is running on :%s. Press Ctrl+C to stop.", cfg.Server.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] server shutdown: %v", err)
	}
	log.Println("[INFO] Sharpey stopped")
}
