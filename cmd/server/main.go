package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radiocast/internal/platform/config"
	"radiocast/internal/platform/logger"
	"radiocast/internal/platform/metrics"
	"radiocast/internal/radio"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	mediaDir := config.GetEnv("MEDIA_DIR", "media")
	presetsPath := config.GetEnv("STATION_PRESETS", "stations.yaml")
	tickInterval := config.GetEnvDuration("TICK_INTERVAL", radio.DefaultTickInterval)
	sliceBytes := config.GetEnvInt("SLICE_BYTES", radio.DefaultSliceBytes)
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)

	sources, err := radio.ScanLibrary(mediaDir, log)
	if err != nil {
		log.Error("library scan failed", "media_dir", mediaDir, "error", err)
		os.Exit(1)
	}

	presets, err := radio.LoadPresets(presetsPath)
	if err != nil {
		log.Error("presets load failed", "path", presetsPath, "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	defaults := radio.StationConfig{
		TickInterval: tickInterval,
		SliceBytes:   sliceBytes,
	}
	dir := radio.NewDirectory(sources, presets, defaults, radio.FileLoader{}, log, met)
	dir.StartAll()

	h := radio.NewHandler(dir, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveListeners(dir.TotalListeners()) }).ServeHTTP(w, r)
	})
	r.Get("/healthz", radio.HealthzHandler)
	r.Get("/stations", h.ListStations)
	r.Route("/stations/{station_id}", func(r chi.Router) {
		r.Get("/", h.GetStatus)
		r.Get("/listen", h.Listen)
	})

	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Listen responses are open-ended; a write timeout would cut
		// every listener off mid-stream.
		WriteTimeout: 0,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"media_dir", mediaDir,
		"stations", len(sources),
		"tick_interval", tickInterval.String(),
		"slice_bytes", sliceBytes,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping stations")

	// Stations first: detaching every listener lets the open listen
	// responses finish, so the HTTP drain below is quick.
	dir.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
