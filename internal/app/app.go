package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"tap-redirect-engine/internal/analytics"
	"tap-redirect-engine/internal/api"
	"tap-redirect-engine/internal/config"
	"tap-redirect-engine/internal/engine"
	"tap-redirect-engine/internal/geoip"
	"tap-redirect-engine/internal/listener"
	"tap-redirect-engine/internal/storage"
)

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	store, err := storage.New(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	// Geolocation; the engine degrades to "unknown location" without it
	var locator engine.Locator
	if cfg.GeoIP.DatabasePath != "" {
		db, err := geoip.Open(cfg.GeoIP.DatabasePath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.GeoIP.DatabasePath).Msg("geoip unavailable")
		} else {
			defer db.Close()
			locator = db
		}
	} else {
		log.Warn().Msg("no geoip database configured; geo rules will not match")
	}

	// Analytics
	dispatcher := analytics.NewDispatcher(
		analytics.SinkFunc(store.InsertTapEvent),
		cfg.Analytics.Buffer,
		uint64(cfg.Analytics.MaxRetries),
	)
	dispatcher.Start(rootCtx)
	defer dispatcher.Close()

	// Tap processor
	proc := &engine.TapProcessor{
		Store:         store,
		Locator:       locator,
		Recorder:      dispatcher,
		LocateTimeout: cfg.LocateTimeout(),
	}

	// HTTP
	h := api.NewTapHandler(proc)
	r := api.Router(h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listener (LISTEN/NOTIFY) keeps the profile cache fresh
	go listener.ListenAndFlush(rootCtx, store, cfg.Listener.Channel, cfg.Backoff())

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal
	waitForSignal()
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = srv.Shutdown(shCtx)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
