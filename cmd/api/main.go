package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"morph-server/internal/http/handlers"
	httpapi "morph-server/internal/http/httpapi"
	"morph-server/internal/infra"
	"morph-server/internal/infra/geoip"
	"morph-server/internal/journal"
	mw "morph-server/internal/middleware"
	"morph-server/internal/pipeline"
	"morph-server/internal/providers/imagegen"
	"morph-server/internal/providers/vision"
	"morph-server/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Run journal (optional; nil pool means stateless operation)
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
	}
	jnl := journal.New(dbpool, logger)
	if err := jnl.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare journal schema")
	}

	// GeoIP locale hinting (optional)
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	var countryLookup mw.CountryLookup
	if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	visionClient, err := vision.NewClient(vision.Options{
		BaseURL:        cfg.VisionBaseURL,
		Model:          cfg.VisionModel,
		RequestTimeout: cfg.VisionTimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build vision client")
	}
	genClient, err := imagegen.NewClient(imagegen.Options{
		BaseURL:        cfg.GenBaseURL,
		Model:          cfg.GenModel,
		Count:          cfg.GenCount,
		Size:           cfg.GenSize,
		ResponseFormat: cfg.GenResponseFormat,
		RequestTimeout: cfg.GenTimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Vision:  visionClient,
		Gen:     genClient,
		Store:   store,
		Journal: jnl,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline runner")
	}

	app := handlers.NewApp(runner, jnl, logger)

	staticDir := ""
	if cfg.StorageBackend == infra.StorageBackendLocal {
		staticDir = cfg.StoragePath
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  countryLookup,
		StaticDir:      staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newStore(cfg *infra.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case infra.StorageBackendS3:
		return storage.NewS3Store(storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return storage.NewFileStore(cfg.StoragePath, cfg.StaticBaseURL)
	}
}
