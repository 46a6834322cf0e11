// Package kvstore provides the small key-value persistence layer behind the
// custom model tier. Every backend stores opaque byte values under string
// keys; callers own the encoding.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const sqliteFile = "llmcost.db"

// Open builds the backend selected in cfg. Redis and Postgres are pinged
// before returning so misconfiguration shows up at startup.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFile(cfg.Path)
	case "sqlite":
		return OpenSQLite(ctx, filepath.Join(cfg.Path, sqliteFile))
	case "redis":
		rdb, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(rdb, cfg.Redis.KeyPrefix), nil
	case "postgres":
		pool, err := connectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		var store Store = NewPostgres(pool)
		if cfg.Redis.CacheTTL > 0 {
			rdb, err := connectRedis(ctx, cfg.Redis)
			if err != nil {
				logger.Warn("redis not reachable (kv cache disabled)", "error", err)
			} else {
				store = NewCached(store, rdb, cfg.Redis.KeyPrefix, cfg.Redis.CacheTTL)
				logger.Info("redis kv cache enabled", "ttl", cfg.Redis.CacheTTL)
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if len(cfg.Addresses) == 0 || cfg.Addresses[0] == "" {
		return nil, errors.New("redis: no address configured")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addresses[0],
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
