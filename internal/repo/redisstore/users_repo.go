package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/redis/go-redis/v9"
)

// UsersRepo keeps one hash per user under <prefix>:user:<id>; ids come from INCR on <prefix>:users:seq.
type UsersRepo struct {
	rdb    *redis.Client
	prefix string
	prom   *observability.Prom
}

type Option func(*UsersRepo)

func WithProm(prom *observability.Prom) Option {
	return func(r *UsersRepo) { r.prom = prom }
}

func NewUsersRepo(rdb *redis.Client, prefix string, opts ...Option) *UsersRepo {
	if prefix == "" {
		prefix = "userhub"
	}

	r := &UsersRepo{rdb: rdb, prefix: prefix}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) seqKey() string {
	return r.prefix + ":users:seq"
}

func (r *UsersRepo) userKey(id int64) string {
	return r.prefix + ":user:" + strconv.FormatInt(id, 10)
}

func (r *UsersRepo) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}

	return r.update(ctx, u)
}

func (r *UsersRepo) insert(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.insert", func() error {
		id, err := r.rdb.Incr(ctx, r.seqKey()).Result()
		if err != nil {
			return fmt.Errorf("next user id: %w", err)
		}

		u.ID = id
		if err := r.rdb.HSet(ctx, r.userKey(id), fields(u)).Err(); err != nil {
			return fmt.Errorf("store user: %w", err)
		}
		return nil
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// only overwrites an existing hash; WATCH makes the existence check and the write atomic
func (r *UsersRepo) update(ctx context.Context, u user.User) (user.User, error) {
	key := r.userKey(u.ID)

	err := r.observe("users.update", func() error {
		return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if n == 0 {
				return user.ErrNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fields(u))
				return nil
			})
			return err
		}, key)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.find_by_id", func() error {
		m, err := r.rdb.HGetAll(ctx, r.userKey(id)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return user.ErrNotFound
			}
			return err
		}
		if len(m) == 0 {
			return user.ErrNotFound
		}

		u = user.User{
			ID:       id,
			Name:     m["name"],
			Email:    m["email"],
			Password: m["password"],
		}
		return nil
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) DeleteByID(ctx context.Context, id int64) error {
	return r.observe("users.delete_by_id", func() error {
		n, err := r.rdb.Del(ctx, r.userKey(id)).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *UsersRepo) Close() error {
	return r.rdb.Close()
}

func fields(u user.User) map[string]any {
	return map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.Password,
	}
}
