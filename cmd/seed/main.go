package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/db"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/migrate"
)

//go:embed menu.yaml
var defaultMenu []byte

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "", "menu YAML file (defaults to the bundled menu)")
	dryRun := flag.Bool("dry-run", false, "parse and validate without writing")
	flag.Parse()

	var source io.Reader = bytes.NewReader(defaultMenu)
	if *file != "" {
		f, err := os.Open(*file)
		requireResource(ctx, logg, "menu file", err)
		defer f.Close()
		source = f
	}

	if *dryRun {
		rows, err := catalog.ParseSeed(source)
		requireResource(ctx, logg, "menu parse", err)
		fmt.Printf("menu file valid (%d items)\n", len(rows))
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	var count int
	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := catalog.Seed(ctx, catalog.NewRepository(tx), source)
		count = n
		return err
	})
	requireResource(ctx, logg, "menu seed", err)

	logg.Info(logg.WithField(ctx, "items", count), "menu seeded")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
