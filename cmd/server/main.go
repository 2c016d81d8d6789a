// Package main is the entry point for the ledger API.
// It loads configuration, connects PostgreSQL, Redis and Kafka,
// wires the ledger services and serves HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kudi/internal/config"
	"kudi/internal/events"
	"kudi/internal/logger"
	"kudi/internal/metrics"
	"kudi/internal/repositories"
	"kudi/internal/repositories/cache"
	"kudi/internal/routes"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	db, err := repositories.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	if err := sqlDB.Ping(); err != nil {
		return err
	}
	log.Info("connected to database")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				log.Debug("db pool stats",
					zap.Int("open", stats.OpenConnections),
					zap.Int("idle", stats.Idle),
					zap.Int("in_use", stats.InUse),
					zap.Int64("wait_count", stats.WaitCount),
					zap.Duration("wait_duration", stats.WaitDuration))
			}
		}
	}()

	cacheService := connectCache(ctx, cfg, log)
	if cacheService != nil {
		defer func() {
			if err := cacheService.Close(); err != nil {
				log.Warn("failed to close redis connection", zap.Error(err))
			}
		}()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, log))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("failed to flush kafka writer", zap.Error(err))
			}
		}()
		publisher = kp
		log.Info("publishing transaction events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	collector := metrics.New(nil)
	services := routes.NewServices(routes.Infrastructure{
		Store:     repositories.NewStore(db),
		Cache:     cacheService,
		Metrics:   collector,
		Publisher: publisher,
		Logger:    log,
	}, cfg)

	app := fiber.New(fiber.Config{
		AppName:      "kudi",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return response.Error(c, fe.Code, fe.Message)
			}
			log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			return response.ServerError(c, "internal error")
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(requestLogger(log))

	app.Use("/api/convert", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}))

	routes.SetupRoutes(app, services, routes.Options{
		Config:  cfg,
		Metrics: collector,
		Logger:  log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// connectCache returns nil when Redis is unreachable; the ledger then reads
// straight from the database.
func connectCache(ctx context.Context, cfg config.Config, log *zap.Logger) *cache.CacheService {
	client := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	svc := cache.NewCacheService(client, cfg.WalletCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := svc.HealthCheck(pingCtx); err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
		_ = client.Close()
		return nil
	}
	log.Info("connected to redis")
	return svc
}

func requestLogger(log *zap.Logger) fiber.Handler {
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()))
		return err
	}
}
