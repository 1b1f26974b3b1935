package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/cache"
	"github.com/dafibh/ledger/ledger-backend/internal/config"
	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/handler"
	"github.com/dafibh/ledger/ledger-backend/internal/repository"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/memory"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// backend opens the configured data and cache stores and remembers how to close them
type backend struct {
	pool    *pgxpool.Pool
	db      *memory.DB
	cache   cache.Cache
	pingers map[string]handler.Pinger
	closers []func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{pingers: make(map[string]handler.Pinger)}

	switch cfg.DataBackend {
	case config.DataBackendPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			log.Info().Msg("Database migrations applied")
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		b.pool = pool
		b.pingers["database"] = pool
		log.Info().Msg("Connected to database")
	default:
		b.db = memory.NewDB()
		log.Warn().Msg("Using in-memory data backend; data is lost on restart")
	}

	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		r, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = r.Close() })
		if err := r.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.cache = r
		b.pingers["cache"] = r
		log.Info().Msg("Connected to redis cache")
	default:
		local := cache.NewLocal(cfg.CacheMaxEntries)
		local.StartCleanup(time.Minute)
		b.closers = append(b.closers, local.Stop)
		b.cache = local
	}

	return b, nil
}

// Close releases the stores in reverse order of opening
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// newRepository builds the repository of one entity on the configured store
func newRepository[E domain.Entity](b *backend, newEntity func() E, opts ...repository.Option) *repository.Repository[E] {
	if b.pool != nil {
		return repository.New[E](postgres.NewStore(b.pool, newEntity), newEntity, opts...)
	}
	return repository.New[E](memory.NewStore(b.db, newEntity), newEntity, opts...)
}
