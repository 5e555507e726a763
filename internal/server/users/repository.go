package users

import (
	"context"
	"database/sql"
)

// Repository persists identity records. The store enforces email
// uniqueness; Create reports a duplicate as common.ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	TouchLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ConnProvider hands out the live store handle, connecting (with bounded
// retries) when necessary. Satisfied by db.ResilientConn.
type ConnProvider interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}
