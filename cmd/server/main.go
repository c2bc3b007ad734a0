package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lynxlabs/lynx/internal/analytics"
	"github.com/lynxlabs/lynx/internal/cache"
	"github.com/lynxlabs/lynx/internal/config"
	"github.com/lynxlabs/lynx/internal/db"
	"github.com/lynxlabs/lynx/internal/geo"
	"github.com/lynxlabs/lynx/internal/handlers"
	"github.com/lynxlabs/lynx/internal/ipcheck"
	"github.com/lynxlabs/lynx/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	geoProvider := newGeoProvider(cfg)
	defer geoProvider.Close()

	linkCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	collector := analytics.NewCollector(database, geoProvider, cfg.BufferSize, cfg.FlushInterval)

	var checker *ipcheck.Checker
	if cfg.IPCheck {
		checker = ipcheck.NewChecker()
	}

	linkHandler := &handlers.LinkHandler{
		DB:    database,
		Cfg:   cfg,
		Cache: linkCache,
	}

	statsHandler := &handlers.StatsHandler{
		DB:   database,
		TopN: cfg.TopN,
	}

	redirectHandler := &handlers.RedirectHandler{
		DB:          database,
		Cache:       linkCache,
		Collector:   collector,
		Sessions:    session.NewDeriver(cfg.SessionStrategy),
		IPCheck:     checker,
		FallbackURL: cfg.FallbackURL,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Management API (authenticated)
	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.RequireAPIKey(cfg.APIKey))
		r.Post("/links", linkHandler.Create)
		r.Get("/links", linkHandler.List)
		r.Get("/links/{id}", linkHandler.Get)
		r.Patch("/links/{id}", linkHandler.Update)
		r.Delete("/links/{id}", linkHandler.Delete)
		r.Get("/links/{id}/qr", linkHandler.QRCode)
		r.Get("/links/{id}/stats", statsHandler.LinkStats)
		r.Get("/overview", statsHandler.Overview)
	})

	// All other routes → redirect handler
	r.NotFound(redirectHandler.ServeHTTP)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("lynx listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	collector.Shutdown()
	checker.Shutdown()
	log.Println("goodbye")
}

// newGeoProvider picks the enrichment backend: local mmdb when configured,
// else the hosted HTTP API, else no enrichment at all.
func newGeoProvider(cfg *config.Config) geo.Provider {
	if cfg.GeoIPPath != "" {
		reader, err := geo.OpenMaxMind(cfg.GeoIPPath)
		if err == nil {
			return reader
		}
		log.Printf("geo: %v (falling back)", err)
	}
	if cfg.GeoAPIURL != "" {
		return geo.NewHTTPProvider(cfg.GeoAPIURL, cfg.GeoTimeout)
	}
	return geo.Noop{}
}
