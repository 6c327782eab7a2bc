package main

import (
	"flag"
	"log/slog"
	"os"

	"movierating/pkg/config"
	"movierating/sqldb"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	var direction string
	flag.StringVar(&direction, "direction", "up", "Migration direction: up or down")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var dir migrate.MigrationDirection
	switch direction {
	case "up":
		dir = migrate.Up
	case "down":
		dir = migrate.Down
	default:
		logger.Error("unknown migration direction", "direction", direction)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	db, err := sqldb.NewConnection(sqldb.OptionsFromConfig(cfg))
	if err != nil {
		logger.Error("cannot connecting to db", "error", err)
		os.Exit(1)
	}

	total, err := sqldb.Migrate(db, cfg.DB.Driver, dir)
	if err != nil {
		logger.Error("cannot execute migration", "error", err)
		os.Exit(1)
	}

	logger.Info("applied migrations", "direction", direction, "total", total)
}
