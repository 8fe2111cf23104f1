package main

import (
	"flag"
	"log"

	"github.com/alexivanou/geoweather-api/internal/capital"
	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/alexivanou/geoweather-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		dataDir = flag.String("data", "", "Directory with GeoNames dumps (overrides SEEDER_DATA_DIR)")
		output  = flag.String("out", "", "Dataset output path (overrides SEEDER_OUTPUT)")
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
	if *dataDir != "" {
		cfg.Seeder.DataDir = *dataDir
	}
	if *output != "" {
		cfg.Seeder.Output = *output
	}

	logger.Info("Generating capitals dataset",
		zap.String("data_dir", cfg.Seeder.DataDir),
		zap.Strings("languages", cfg.Seeder.AllowedLanguages),
	)

	parser := seeder.NewParser(cfg.Seeder)

	logger.Info("Parsing countries...")
	countries, err := parser.ParseCountries()
	if err != nil {
		logger.Fatal("Failed to parse countries", zap.Error(err))
	}

	logger.Info("Parsing capitals...")
	capitals, err := parser.ParseCapitals()
	if err != nil {
		logger.Fatal("Failed to parse capitals", zap.Error(err))
	}

	ids := make(map[int]bool, len(countries)*2)
	for _, c := range countries {
		if c.GeonameID != 0 {
			ids[c.GeonameID] = true
		}
		if capitalCity, ok := capitals[c.Code]; ok {
			ids[capitalCity.GeonameID] = true
		} else {
			logger.Debug("No capital city row", zap.String("country", c.Code), zap.String("capital", c.CapitalName))
		}
	}

	logger.Info("Parsing alternate names (streaming mode)...")
	names, err := parser.ParseAlternateNames(ids)
	if err != nil {
		logger.Fatal("Failed to process alternate names", zap.Error(err))
	}

	records := seeder.Build(countries, capitals, names)
	if err := seeder.WriteFile(cfg.Seeder.Output, records); err != nil {
		logger.Fatal("Failed to write dataset", zap.Error(err))
	}

	// the written file must load the same way the server embeds it
	check, err := capital.LoadFile(cfg.Seeder.Output)
	if err != nil {
		logger.Fatal("Generated dataset does not load", zap.Error(err))
	}

	logger.Info("Dataset generated successfully!",
		zap.String("output", cfg.Seeder.Output),
		zap.Int("countries", check.Len()),
		zap.Int("skipped", len(countries)-len(records)),
	)
}
