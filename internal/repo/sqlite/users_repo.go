package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
)

// UsersRepo stores users through database/sql with sqlite placeholders.
type UsersRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewUsersRepo(db *sql.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}

	return r.update(ctx, u)
}

func (r *UsersRepo) insert(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.insert", func() error {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
			u.Name, u.Email, u.Password,
		)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}

		u.ID = id
		return nil
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) update(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.update", func() error {
		result, err := r.db.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, password = ? WHERE id = ?`,
			u.Name, u.Email, u.Password, u.ID,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		return requireAffected(result)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.find_by_id", func() error {
		err := r.db.QueryRowContext(ctx,
			`SELECT id, name, email, password FROM users WHERE id = ?`, id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return user.ErrNotFound
			}
			return fmt.Errorf("query user by id: %w", err)
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
		result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		return requireAffected(result)
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UsersRepo) Close() error {
	return r.db.Close()
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
