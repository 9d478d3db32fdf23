package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Save inserts when u.ID is zero and updates the stored row otherwise.
func (r *UsersRepo) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}

	return r.update(ctx, u)
}

func (r *UsersRepo) insert(ctx context.Context, in user.User) (u user.User, err error) {
	err = r.observe("users.insert", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (name, email, password)
			VALUES ($1, $2, $3)
			RETURNING id, name, email, password`,
			in.Name,
			in.Email,
			in.Password,
		).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) update(ctx context.Context, in user.User) (u user.User, err error) {
	err = r.observe("users.update", func() error {
		scanErr := r.pool.QueryRow(
			ctx,
			`UPDATE users
				SET name = $2,
						email = $3,
						password = $4
			WHERE id = $1
			RETURNING id, name, email, password`,
			in.ID,
			in.Name,
			in.Email,
			in.Password,
		).Scan(&u.ID, &u.Name, &u.Email, &u.Password)

		// if there are no rows matching the id
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return scanErr
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (u user.User, err error) {
	err = r.observe("users.find_by_id", func() error {
		scanErr := r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.Password)

		if errors.Is(scanErr, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return scanErr
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) DeleteByID(ctx context.Context, id int64) error {
	return r.observe("users.delete_by_id", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UsersRepo) Close() error {
	r.pool.Close()
	return nil
}
