package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trailer-addon/internal/addon"
	"trailer-addon/internal/meta"
	"trailer-addon/internal/platform/config"
	"trailer-addon/internal/platform/logger"
	"trailer-addon/internal/platform/metrics"
	"trailer-addon/internal/stream"
	"trailer-addon/internal/trailer"

	"github.com/go-chi/chi/v5"
)

const (
	version         = "0.2.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "7000")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	apiKey := config.GetEnv("TMDB_API_KEY", "")
	metaBaseURL := config.GetEnv("TMDB_BASE_URL", meta.DefaultBaseURL)
	backendList := config.GetEnvList("STREAM_BACKENDS", []string{
		"invidious=https://inv.nadeko.net",
		"piped=https://pipedapi.kavin.rocks",
	})
	backendTimeout := config.GetEnvDuration("BACKEND_TIMEOUT", stream.DefaultTimeout)
	maxStreams := config.GetEnvInt("MAX_STREAMS", 0)
	strategy := config.GetEnv("TRAILER_STRATEGY", "videos")
	fallbackWeb := config.GetEnvBool("FALLBACK_WEB_PLAYER", true)
	catalogTypes := config.GetEnvList("CATALOG_TYPES", []string{"movie", "series"})

	log := logger.New(logLevel, logFormat)

	backends, err := stream.ParseBackends(backendList)
	if err != nil {
		log.Error("invalid STREAM_BACKENDS", "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	metaClient := meta.NewClient(metaBaseURL, apiKey, log)
	streams := stream.NewResolver(backends, backendTimeout, maxStreams, fallbackWeb, log, met)

	// The videos strategy needs the provider credential; without one the
	// locator degrades to platform search.
	var locator trailer.Strategy
	if strategy == "videos" && metaClient.HasAPIKey() {
		locator = trailer.NewProviderVideos(metaClient, log)
	} else {
		locator = trailer.NewPlatformSearch(streams, log)
	}

	svc := addon.NewService(metaClient, locator, streams, log, met)

	manifest := addon.Manifest{
		ID:          "org.trailer.addon",
		Version:     version,
		Name:        "Trailer Streams",
		Description: "Resolves movie and series ids to playable trailer streams",
		Resources:   []string{"meta", "stream"},
		Types:       catalogTypes,
		IDPrefixes:  []string{"tt", "tmdb:"},
		Catalogs:    []addon.CatalogItem{},
	}
	h := addon.NewHandler(svc, manifest, catalogTypes, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Use(addon.Recoverer(log))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler().ServeHTTP(w, req)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"backends", len(backends),
		"strategy", strategy,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
