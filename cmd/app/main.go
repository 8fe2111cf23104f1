package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/geoweather-api/internal/api"
	"github.com/alexivanou/geoweather-api/internal/capital"
	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/alexivanou/geoweather-api/internal/database"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/provider"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"github.com/alexivanou/geoweather-api/internal/repository"
	"github.com/alexivanou/geoweather-api/internal/service"
	"github.com/alexivanou/geoweather-api/internal/stats"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recent places expire from redis after a month without writes
const redisSlotTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	slot, db, cleanup, err := openRecentSlot(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open recent places storage", zap.Error(err))
	}
	defer cleanup()

	capitals, err := capital.Default()
	if err != nil {
		logger.Fatal("Failed to load capitals dataset", zap.Error(err))
	}
	registry, err := i18n.DefaultRegistry()
	if err != nil {
		logger.Fatal("Failed to load language registry", zap.Error(err))
	}
	logger.Info("Resources ready",
		zap.Int("countries", capitals.Len()),
		zap.Int("languages", len(registry.Languages())),
	)

	strs := i18n.NewCache("strings", registry.StringLoader(), logger)
	conds := i18n.NewCache("conditions", registry.ConditionLoader(), logger)

	svc := service.NewService(service.Deps{
		Providers:  provider.New(cfg.Upstream, logger),
		Capitals:   capitals,
		Registry:   registry,
		Translator: i18n.NewTranslator(strs, logger),
		Conditions: i18n.NewConditions(conds),
		Recent:     recent.NewStore(slot, logger),
		Logger:     logger,
	})

	statsOpts := stats.Options{
		Backend:   cfg.Recent.Backend,
		Bundles:   map[string]stats.BundleLister{"strings": strs, "conditions": conds},
		Languages: len(registry.Languages()),
	}
	if db != nil {
		statsOpts.DB = db
		statsOpts.DBConfig = cfg.DB
		if counter, ok := slot.(stats.SlotCounter); ok {
			statsOpts.Slots = counter
		}
	}
	statsCollector := stats.NewCollector(statsOpts)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("recent_backend", string(cfg.Recent.Backend)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openRecentSlot returns the slot for the configured backend. db is non-nil only for the
// sql backend.
func openRecentSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (recent.Slot, *sqlx.DB, func(), error) {
	noop := func() {}

	switch cfg.Recent.Backend {
	case config.RecentBackendFile:
		slot, err := recent.NewFileSlot(cfg.Recent.Dir)
		if err != nil {
			return nil, nil, noop, err
		}
		logger.Info("Recent places stored on disk", zap.String("dir", cfg.Recent.Dir))
		return slot, nil, noop, nil

	case config.RecentBackendSQL:
		db, err := database.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, noop, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

		if err := runMigrations(db, cfg); err != nil {
			db.Close()
			return nil, nil, noop, fmt.Errorf("failed to run migrations: %w", err)
		}
		repos := repository.NewRepositories(db, cfg.DB.Type)
		return repos.Slot, db, func() { db.Close() }, nil

	case config.RecentBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// the store degrades to empty lists, so an unreachable redis is not fatal
			logger.Warn("Redis is not reachable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		return recent.NewRedisSlot(client, redisSlotTTL), nil, func() { client.Close() }, nil

	default:
		return recent.NewMemorySlot(), nil, noop, nil
	}
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	sourcePath := "file://migrations/postgres"

	if cfg.DB.IsMemory() {
		sourcePath = "file://migrations/sqlite"
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourcePath, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
