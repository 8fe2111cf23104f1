package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexivanou/geoweather-api/internal/cli"
	"github.com/alexivanou/geoweather-api/internal/client"
	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"github.com/alexivanou/geoweather-api/internal/suggest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		clientID = flag.String("id", "cli", "Client id sent to the API")
		lang     = flag.String("lang", "", "Interface language (overrides CLIENT_LANG)")
		remote   = flag.Bool("remote-recent", false, "Keep recent places on the server instead of on disk")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *lang != "" {
		cfg.Client.Lang = *lang
	}

	// logs go to stderr, quiet unless asked for
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.LogLevel == "debug" {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	registry, err := i18n.DefaultRegistry()
	if err != nil {
		logger.Fatal("Failed to load language registry", zap.Error(err))
	}

	var store *recent.Store
	if !*remote {
		slot, err := recent.NewFileSlot(recentDir())
		if err != nil {
			logger.Fatal("Failed to open recent places", zap.Error(err))
		}
		store = recent.NewStore(slot, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell := cli.New(cli.Config{
		API:        client.New(cfg.Client.BaseURL, *clientID, cfg.Upstream.Timeout),
		Store:      store,
		Registry:   registry,
		Translator: i18n.NewTranslator(i18n.NewCache("strings", registry.StringLoader(), logger), logger),
		Conditions: i18n.NewConditions(i18n.NewCache("conditions", registry.ConditionLoader(), logger)),
		Logger:     logger,
		Lang:       cfg.Client.Lang,
		Out:        os.Stdout,
		SessionOptions: []suggest.Option{
			suggest.WithDelay(cfg.Client.Debounce),
			suggest.WithContext(ctx),
		},
	})

	if err := shell.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		logger.Fatal("Input failed", zap.Error(err))
	}
}

// recentDir keeps recent places next to other per-user configuration
func recentDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".geoweather")
	}
	return filepath.Join(dir, "geoweather", "recent")
}
