package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/itsdivyansh1/proptech-v2-ai/config"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/api"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/chat"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/corpus"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/database"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/estimator"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/geocoding"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/geometry"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/pricing"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/recommend"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Invalid log level")
	}
	logger.SetLevel(level)

	listings, err := loadListings(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load listings")
	}

	c, err := corpus.FromListings(listings)
	if err != nil {
		logger.WithError(err).Fatal("Failed to encode listings")
	}
	metrics.CorpusListings.Set(float64(c.Len()))
	logger.WithField("listings", c.Len()).Info("Corpus loaded")

	gateway, err := newGateway(cfg, c, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize estimator")
	}

	engine := recommend.NewEngine(c, logger)

	locator, err := newLocator(cfg, engine, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize locator")
	}

	chatClient := chat.NewClient(cfg.Chat, logger)
	chatLimiter := rate.NewLimiter(rate.Limit(float64(cfg.Chat.RatePerMinute)/60), cfg.Chat.RateBurst)

	handler := api.NewHandler(
		pricing.NewService(gateway, logger),
		engine,
		locator,
		chatClient,
		chatLimiter,
		logger,
	)

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handler, cfg.Server.AllowedOrigins, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
}

func loadListings(cfg *config.Config, logger *logrus.Logger) ([]models.Listing, error) {
	if cfg.Corpus.DBPath != "" {
		logger.Infof("Using database at: %s", cfg.Corpus.DBPath)
		db, err := database.NewDatabase(cfg.Corpus.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.GetAllListings()
	}

	logger.Infof("Using CSV snapshot at: %s", cfg.Corpus.CSVPath)
	return corpus.LoadCSV(cfg.Corpus.CSVPath)
}

func newGateway(cfg *config.Config, c *corpus.Corpus, logger *logrus.Logger) (*estimator.Gateway, error) {
	regions, err := c.Codecs().Codec(codec.FieldRegion)
	if err != nil {
		return nil, err
	}

	if cfg.Estimator.URL != "" {
		logger.WithField("url", cfg.Estimator.URL).Info("Using remote price model")
		remote := estimator.NewRemotePredictor(cfg.Estimator.URL, cfg.Estimator.Timeout, logger)
		return estimator.NewGateway(remote, regions, logger), nil
	}

	model, err := estimator.LoadLinearModel(cfg.Estimator.ModelPath)
	if err != nil {
		return nil, err
	}
	if len(model.Regions) > 0 {
		regions = codec.New(codec.FieldRegion, model.Regions)
	}
	logger.WithFields(logrus.Fields{
		"path":    cfg.Estimator.ModelPath,
		"regions": regions.Len(),
	}).Info("Loaded price model")

	return estimator.NewGateway(model, regions, logger), nil
}

func newLocator(cfg *config.Config, engine *recommend.Engine, logger *logrus.Logger) (geometry.Locator, error) {
	switch cfg.Locator.Mode {
	case "centroid":
		regions, err := geometry.LoadRegions(cfg.Locator.RegionsPath)
		if err != nil {
			return nil, err
		}
		logger.WithField("regions", len(regions)).Info("Loaded region shapes")
		return geometry.NewCentroidLocator(regions, cfg.Locator.MaxDistanceKm, logger), nil
	case "nominatim":
		return geocoding.NewReverseGeocoder(
			cfg.Locator.NominatimURL,
			cfg.Locator.CacheDir,
			cfg.Locator.NominatimTimeout,
			engine.ResolveLocation,
			logger,
		), nil
	default:
		return geometry.FixedLocator{Location: cfg.Locator.FixedLocation}, nil
	}
}
