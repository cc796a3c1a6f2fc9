package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	auth "github.com/goliatone/go-loan-auth"
)

// Open connects to the sqlite database at dsn and enables foreign keys.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("repository: empty dsn")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		sqldb.SetMaxOpenConns(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded migrations that have not run yet.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(auth.GetMigrationsFS()); err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}

	if err := migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	return migrator.Migrate(ctx)
}

// RunInTx runs f inside a transaction unless ctx is already done.
func RunInTx(ctx context.Context, db *bun.DB, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return db.RunInTx(ctx, nil, f)
	}
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return auth.ErrRecordNotFound
	case isUniqueViolation(err):
		return auth.ErrRecordExists
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
