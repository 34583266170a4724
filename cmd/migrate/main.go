package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/db"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// Commands that only touch the filesystem.
var fileCommands = map[string]func(options) error{
	"create": func(o options) error {
		if o.name == "" {
			return fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(sourceDir(o.dir), o.name, time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	},
	"validate": func(o options) error {
		count, err := migrate.ValidateDir(sourceDir(o.dir))
		if err != nil {
			return err
		}
		fmt.Printf("migration validation passed (%d files)\n", count)
		return nil
	},
}

// Commands that run against the configured database.
var dbCommands = map[string]func(context.Context, *sql.DB, string, options) error{
	"up":     gooseCommand("up"),
	"down":   gooseCommand("down"),
	"status": gooseCommand("status"),
	"version": func(ctx context.Context, sqlDB *sql.DB, dialect string, o options) error {
		if o.version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, o.dir, o.version)
	},
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.Embedded, "migrations directory (empty runs the set compiled into this binary)")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if fn, ok := fileCommands[opts.cmd]; ok {
		return fn(opts)
	}
	fn, ok := dbCommands[opts.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql database: %w", err)
	}

	ctx = logg.WithField(ctx, "dialect", dbClient.Dialect())
	if err := fn(ctx, sqlDB, dbClient.Dialect(), opts); err != nil {
		return err
	}
	logg.Info(ctx, "migrate finished")
	return nil
}

func gooseCommand(command string) func(context.Context, *sql.DB, string, options) error {
	return func(ctx context.Context, sqlDB *sql.DB, dialect string, o options) error {
		return migrate.Run(ctx, sqlDB, dialect, o.dir, command)
	}
}

func sourceDir(dir string) string {
	if dir == migrate.Embedded {
		return migrate.DefaultDir
	}
	return dir
}
