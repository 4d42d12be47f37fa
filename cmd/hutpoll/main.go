// hutpoll runs a single polling pass and exits. It is meant for cron-style
// scheduling; the pass exits zero as long as the dataset stays consistent,
// even when individual huts could not be fetched.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"hut-occupancy-backend/config"
	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/poller"
)

func main() {
	logger := log.New(os.Stdout, "hutpoll ", log.LstdFlags)

	configPath := flag.String("config", "", "path to the configuration file")
	datasetPath := flag.String("dataset", "", "override the dataset path")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file loaded: %v", err)
	}

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg *config.Config
	if *configPath == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("failed to load configuration from %s: %v", *configPath, err)
		}
		cfg = loaded
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}

	registry := cfg.Registry()
	store := history.NewFileStore(cfg.Dataset.Path)

	svc := poller.NewService(cfg, registry, store)
	result, err := svc.RunOnce(context.Background())
	if err != nil {
		logger.Fatalf("polling pass failed: %v", err)
	}

	if len(result.HutErrors) > 0 {
		logger.Printf("pass %s completed with %d of %d huts failed", result.PassID, len(result.HutErrors), registry.Len())
	}
	logger.Printf("appended %d rows to %s", result.RowsWritten, cfg.Dataset.Path)
}
