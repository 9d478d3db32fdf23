package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// key namespace, "userhub" when empty
	Prefix string
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Open connects and checks connectivity before handing back the store.
func Open(ctx context.Context, cfg Config, opts ...Option) (*UsersRepo, error) {
	rdb := NewClient(cfg)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewUsersRepo(rdb, cfg.Prefix, opts...), nil
}
