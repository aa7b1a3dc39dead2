package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/terrapulse/agrorisk/internal/adapter/gpm"
	httpadapter "github.com/terrapulse/agrorisk/internal/adapter/http"
	kafkaadapter "github.com/terrapulse/agrorisk/internal/adapter/kafka"
	"github.com/terrapulse/agrorisk/internal/adapter/modis"
	"github.com/terrapulse/agrorisk/internal/adapter/power"
	"github.com/terrapulse/agrorisk/internal/adapter/sourcecache"
	"github.com/terrapulse/agrorisk/internal/adapter/verdictcache"
	"github.com/terrapulse/agrorisk/internal/adapter/worldview"
	"github.com/terrapulse/agrorisk/internal/config"
	"github.com/terrapulse/agrorisk/internal/domain"
	"github.com/terrapulse/agrorisk/internal/engine"
	"github.com/terrapulse/agrorisk/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	profiles := domain.NewCropProfiles()

	var (
		weather       domain.WeatherSource       = power.NewClient(cfg.PowerBaseURL, cfg.SourceTimeout, logger)
		precipitation domain.PrecipitationSource = gpm.NewClient(cfg.GPMBaseURL, cfg.EarthdataToken, cfg.SourceTimeout, logger)
		vegetation    domain.VegetationSource    = modis.NewClient(cfg.MODISBaseURL, cfg.SourceTimeout, logger)
		imagery       domain.ImagerySource       = worldview.NewClient(cfg.WorldviewBaseURL, cfg.SourceTimeout, logger)
	)

	// In-process LRU over the source clients (feature-flagged via SOURCE_CACHE_SIZE).
	if cfg.SourceCacheSize > 0 {
		weather = sourcecache.NewCachedWeather(weather, cfg.SourceCacheSize, metrics)
		precipitation = sourcecache.NewCachedPrecipitation(precipitation, cfg.SourceCacheSize, metrics)
		vegetation = sourcecache.NewCachedVegetation(vegetation, cfg.SourceCacheSize, metrics)
		imagery = sourcecache.NewCachedImagery(imagery, cfg.SourceCacheSize, metrics)
		logger.Info("source cache enabled", "size", cfg.SourceCacheSize)
	}

	opts := engine.Options{
		SourceTimeout:   cfg.SourceTimeout,
		MaxRetries:      cfg.SourceMaxRetries,
		BreakerFailures: cfg.BreakerFailures,
		BreakerOpenFor:  cfg.BreakerOpenFor,
	}

	// Shared verdict cache (feature-flagged via REDIS_ADDR).
	var redisCache *verdictcache.Cache
	if cfg.RedisAddr != "" {
		redisCache = verdictcache.New(cfg.RedisAddr, cfg.VerdictCacheTTL, logger)
		opts.Cache = redisCache
		logger.Info("verdict cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.VerdictCacheTTL)
	}

	// High-risk alert publishing (feature-flagged via KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertsTopic, logger)
		opts.Publisher = publisher
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertsTopic)
	}

	eng := engine.New(weather, precipitation, vegetation, imagery, profiles, logger, metrics, opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, eng, profiles, cfg.MaxRangeDays, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
