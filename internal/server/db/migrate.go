package db

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/mikaelsv/kontakta/internal/server/migrations"
)

// Migrate applies the embedded goose migrations. It is idempotent; the
// resilience layer runs it once per process on the first successful connect.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
