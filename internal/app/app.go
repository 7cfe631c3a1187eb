package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/adapter/firecrawl"
	"github.com/user/price-tracker/internal/adapter/memory"
	"github.com/user/price-tracker/internal/adapter/postgres"
	redis_adapter "github.com/user/price-tracker/internal/adapter/redis"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/internal/usecase"
	"github.com/user/price-tracker/pkg/config"
)

const refreshLockName = "price-refresh"

// App holds the wired use cases and the connections they depend on.
type App struct {
	Catalog   usecase.Catalog
	Refresher usecase.Refresher

	db  *pgxpool.Pool
	rdb *redis.Client
}

// New connects to the configured stores, ensures the schema exists and
// builds the use cases.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// --- PostgreSQL ---
	dbpool, err := postgres.NewPool(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	logger.Info("PostgreSQL connection pool established")

	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		dbpool.Close()
		return nil, err
	}

	a := &App{db: dbpool}

	// --- Refresh lock ---
	var lock repository.RunLock
	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		lock = redis_adapter.NewRunLock(a.rdb, refreshLockName)
		logger.Info("Redis connection established")
	} else {
		lock = memory.NewRunLock()
		logger.Info("REDIS_ADDR not set, refresh lock is process-local")
	}

	// --- Repositories ---
	productRepo := postgres.NewProductRepo(dbpool)
	competitorRepo := postgres.NewCompetitorRepo(dbpool)
	extractor := firecrawl.NewExtractor(cfg.FirecrawlBaseURL, cfg.FirecrawlAPIKey, cfg.ExtractTimeout())

	// --- Use Cases ---
	a.Catalog = usecase.NewCatalog(productRepo, competitorRepo, extractor, logger)
	a.Refresher = usecase.NewRefresher(competitorRepo, extractor, lock, usecase.RefreshOptions{
		Concurrency:   cfg.RefreshConcurrency,
		RatePerSecond: cfg.RefreshRatePerSecond,
		LockTTL:       cfg.RefreshLockTTL(),
	}, logger)

	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
