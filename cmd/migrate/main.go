package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	dbURL := flag.String("db-url", "", "database URL (overrides env and config)")
	configDir := flag.String("config", "configs", "path to configuration directory")
	migrationsPath := flag.String("path", "migrations", "path to migrations directory")
	flag.Parse()

	logger := telemetry.NewLogger(os.Stderr, "info", "text")

	// Only the postgres backend needs a schema; the sqlite backend creates
	// its table on open.
	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		loader := config.NewLoader(*configDir, logger)
		if err := loader.Load(); err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		dsn = loader.Config().Storage.Database.DSN()
	}

	m, err := migrate.New("file://"+*migrationsPath, dsn)
	if err != nil {
		logger.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		logger.Error("invalid direction, use 'up' or 'down'", "direction", *direction)
		os.Exit(1)
	}

	if err != nil && err != migrate.ErrNoChange {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	v, dirty, _ := m.Version()
	fmt.Printf("migration %s complete (version: %d, dirty: %v)\n", *direction, v, dirty)
}
