package repo

import (
	"context"
	"fmt"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/repo/postgres"
	"github.com/geocoder89/userhub/internal/repo/redisstore"
	"github.com/geocoder89/userhub/internal/repo/sqlite"
	"github.com/geocoder89/userhub/internal/service"
)

// Store is a user repository plus the lifecycle hooks the server needs.
type Store interface {
	service.UserRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*memory.UsersRepo)(nil)
	_ Store = (*postgres.UsersRepo)(nil)
	_ Store = (*sqlite.UsersRepo)(nil)
	_ Store = (*redisstore.UsersRepo)(nil)
)

// Open builds the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config, prom *observability.Prom) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		return memory.NewUsersRepo(), nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgres.NewUsersRepo(pool, prom), nil

	case config.DriverSQLite:
		sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return sqlite.NewUsersRepo(sqlDB, prom), nil

	case config.DriverRedis:
		r, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, redisstore.WithProm(prom))
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return r, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
