package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hut-occupancy-backend/config"
	"hut-occupancy-backend/internal/api"
	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/poller"
	"hut-occupancy-backend/internal/weather"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "hutd ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file loaded: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	var cfg *config.Config
	if _, err := os.Stat(configPath); err != nil {
		logger.Printf("no configuration file at %s, using built-in defaults", configPath)
		cfg = config.Default()
	} else {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
		}
		cfg = loaded
		logger.Printf("configuration loaded successfully from %s", configPath)
	}

	registry := cfg.Registry()
	logger.Printf("tracking %d huts", registry.Len())

	// Initialize the history dataset. Migration runs before anything reads
	// or appends.
	store := history.NewFileStore(cfg.Dataset.Path)
	if err := store.MigrateIfNeeded(); err != nil {
		logger.Fatalf("failed to prepare history dataset: %v", err)
	}
	logger.Printf("history dataset ready at %s", cfg.Dataset.Path)

	weatherClient := weather.NewClient(cfg.Weather)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize and run the poller in the background
	pollerSvc := poller.NewService(cfg, registry, store)
	go pollerSvc.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, store, registry, weatherClient)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
