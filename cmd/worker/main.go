package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amara-oss/backend-duka/internal/cart"
	"github.com/amara-oss/backend-duka/internal/config"
	"github.com/amara-oss/backend-duka/internal/lock"
	"github.com/amara-oss/backend-duka/internal/obs"
	"github.com/amara-oss/backend-duka/internal/repo"
)

const sweepLockKey = "lock:cart-sweep"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "duka"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	cartSvc := &cart.Service{Store: repo.CartStore{Pool: pool}}
	locker := lock.Locker{R: redisClient}

	interval := cfg.CartSweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	logger.Info().Dur("interval", interval).Msg("worker starting")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweep(ctx, locker, cartSvc, logger)
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutdown complete")
			return
		case <-ticker.C:
		}
	}
}

// sweep removes expired carts under a distributed lock so only one worker
// instance runs the cleanup per interval.
func sweep(ctx context.Context, locker lock.Locker, carts *cart.Service, logger zerolog.Logger) {
	err := locker.WithLock(ctx, sweepLockKey, time.Minute, func(ctx context.Context) error {
		removed, err := carts.SweepExpired(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			obs.CartsSweptTotal.Add(float64(removed))
			logger.Info().Int64("removed", removed).Msg("swept expired carts")
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("sweep expired carts")
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
