package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is the source-tree location of the migrations, used when
// creating or validating files.
const DefaultDir = "pkg/migrate/migrations"

// Embedded is the migration set compiled into every binary.
const Embedded = ""

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Run executes a goose command against db using the given goose dialect
// ("postgres" or "sqlite3"). An Embedded dir runs the compiled-in set.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := prepare(dialect, dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it reaches targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	dir, err = prepare(dialect, dir)
	if err != nil {
		return err
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	if current < target {
		err = goose.UpToContext(ctx, db, dir, target)
	} else if current > target {
		err = goose.DownToContext(ctx, db, dir, target)
	}
	if err != nil {
		return fmt.Errorf("goose migrate to %d: %w", target, err)
	}
	return nil
}

// prepare points goose at the dialect and migration source. goose keeps both
// as package state, so every entry point resets them.
func prepare(dialect, dir string) (string, error) {
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect %q: %w", dialect, err)
	}
	if dir == Embedded {
		goose.SetBaseFS(embeddedMigrations)
		return "migrations", nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}
