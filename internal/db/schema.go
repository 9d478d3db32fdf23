package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usersTableDDL = `CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL
)`

// EnsureSchema creates the users table when it is missing. Safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, usersTableDDL)

	return err
}
