package main

import (
	"errors"
	"flag"
	"log"

	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, steps, force or version")
		steps   = flag.Int("n", 1, "Number of steps for -command=steps (negative rolls back)")
		version = flag.Int("version", -1, "Version for -command=force")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	sourceURL := "file://migrations/postgres"
	databaseURL := cfg.DB.DSN()

	if cfg.DB.IsMemory() {
		// only useful against a shared-cache database kept open by another process
		sourceURL = "file://migrations/sqlite"
		databaseURL = "sqlite3://" + databaseURL
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		logger.Fatal("Failed to create migration instance", zap.Error(err))
	}
	defer m.Close()

	logger.Info("Migrating recent slot schema",
		zap.String("db_type", string(cfg.DB.Type)),
		zap.String("source", sourceURL),
	)

	switch *command {
	case "up":
		logger.Info("Running migrations UP")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration up failed", zap.Error(err))
		}
	case "down":
		logger.Info("Running migrations DOWN")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration down failed", zap.Error(err))
		}
	case "steps":
		logger.Info("Running migration steps", zap.Int("n", *steps))
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration steps failed", zap.Error(err))
		}
	case "force":
		if *version < 0 {
			logger.Fatal("force needs -version")
		}
		logger.Info("Forcing migration version", zap.Int("version", *version))
		if err := m.Force(*version); err != nil {
			logger.Fatal("Migration force failed", zap.Error(err))
		}
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("No migration applied yet")
			break
		}
		if err != nil {
			logger.Fatal("Failed to get version", zap.Error(err))
		}
		logger.Info("Migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	default:
		logger.Fatal("Unknown command", zap.String("command", *command))
	}

	logger.Info("Migration command completed successfully")
}
