package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/imageproc"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/replicate"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	invoker := replicate.NewClient(replicate.Options{
		APIToken:     cfg.ReplicateAPIToken,
		BaseURL:      cfg.ReplicateBaseURL,
		Logger:       &logger,
		PollInterval: cfg.ReplicatePollEvery,
	})
	if !invoker.HasCredentials() {
		logger.Warn().Msg("REPLICATE_API_TOKEN not set, AI endpoints will report MISSING_ENV")
	}

	analytics := repo.NewAnalyticsRepository(dbpool)

	app := &handlers.App{
		Config:  cfg,
		Logger:  logger,
		Invoker: invoker,
		Normalizer: imageproc.NewNormalizer(imageproc.Options{
			MaxDimension: cfg.MaxImageDimension,
			MaxBytes:     cfg.MaxUploadBytes,
		}),
		Categories: repo.NewCategoryRepository(dbpool),
		Products:   repo.NewProductRepository(dbpool),
		Designs:    repo.NewDesignRepository(dbpool),
		Analytics:  analytics,
		Store:      store,
	}

	var country middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver disabled")
	} else if resolver != nil {
		country = resolver.CountryCode
		if closer, ok := resolver.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	router := httpapi.NewRouter(app, analytics, country)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("build_id", cfg.BuildID).Msgf("API listening on :%s", cfg.Port)
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
