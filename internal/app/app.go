package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/handlers"
	"github.com/tablepick/reco/internal/metrics"
	"github.com/tablepick/reco/internal/middleware"
	"github.com/tablepick/reco/internal/services"
	"github.com/tablepick/reco/internal/snapshot"
	"github.com/tablepick/reco/internal/validation"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	snapshot *snapshot.Snapshot
	redis    *redis.Client
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	started := time.Now()
	snap, err := loadSnapshot(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus snapshot: %w", err)
	}
	app.snapshot = snap
	metrics.SnapshotLoadDuration.Set(time.Since(started).Seconds())
	metrics.SetCorpusSize(len(snap.Restaurants), len(snap.Users), len(snap.Visits))

	if cfg.Redis.URL != "" {
		client, err := connectRedis(&cfg.Redis, app.logger)
		if err != nil {
			// The cache is a warm layer; run without it rather than fail.
			app.logger.WithError(err).Warn("Redis unavailable, running without result cache")
		} else {
			app.redis = client
		}
	}

	app.services = services.New(cfg, app.logger, snap, app.redis)
	app.handlers = handlers.New(app.logger, cfg, app.services)

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}
	app.setupRouter(middleware.NewValidationMiddleware(validator))

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing Redis connection")
			return err
		}
	}
	return nil
}

func loadSnapshot(cfg *config.Config, logger *logrus.Logger) (*snapshot.Snapshot, error) {
	switch cfg.Data.Source {
	case "csv":
		return snapshot.LoadCSV(cfg.Data.CSV, logger)
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.Postgres.ConnectTimeout)
		defer cancel()

		pool, err := snapshot.Connect(ctx, cfg.Data.Postgres)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		return snapshot.LoadPostgres(ctx, pool, cfg.Data.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func connectRedis(cfg *config.RedisConfig, logger *logrus.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.PoolSize = cfg.PoolSize

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("Connected to Redis result cache")
	return client, nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter(vm *middleware.ValidationMiddleware) {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Compression())

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(vm.ValidateParams())
	{
		restaurants := api.Group("/restaurants")
		{
			restaurants.POST("/recommendations/by-tags",
				vm.ValidateTagPreferences(), a.handlers.Restaurant.RecommendByTags)
			restaurants.POST("/recommendations/by-preferences",
				vm.ValidatePreferenceQuery(), a.handlers.Restaurant.RecommendByPreferences)
			restaurants.GET("/recommendations/user/:userId", a.handlers.Restaurant.RecommendForUser)
			restaurants.GET("/recommendations/user/:userId/advanced", a.handlers.Restaurant.RecommendForUserAdvanced)
			restaurants.GET("/recommendations/user/:userId/collaborative", a.handlers.Restaurant.RecommendCollaborative)
			restaurants.GET("/recommendations/user/:userId/hybrid", a.handlers.Restaurant.RecommendHybrid)
			restaurants.GET("/:restaurantId/similar", a.handlers.Restaurant.RecommendSimilar)
			restaurants.GET("/:restaurantId/reviews/recommended", a.handlers.Restaurant.RecommendedReviews)
		}

		posts := api.Group("/posts")
		{
			posts.GET("/recommendations/user/:userId", a.handlers.Post.Feed)
		}
	}

	a.router = router
}
