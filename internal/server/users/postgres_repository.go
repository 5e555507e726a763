package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mikaelsv/kontakta/internal/common"
)

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	conn ConnProvider
}

func NewPostgresRepository(conn ConnProvider) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (email, fullname, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err = db.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query :=
		`SELECT id, email, fullname, password_hash, created_at, last_login_at FROM users
		 WHERE email = $1
		 `

	return scanUser(db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query :=
		`SELECT id, email, fullname, password_hash, created_at, last_login_at FROM users
		 WHERE id = $1
		 `

	return scanUser(db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var lastLogin sql.NullTime

	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}
