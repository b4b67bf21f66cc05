package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	actualAddr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Printf("Listening on http://%s", actualAddr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	log.Printf("Received signal %v, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func loadConfig() (*database.AppConfig, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		p, err := database.GetConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = p
	}

	cfg, err := database.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	log.Printf("Config loaded: path=%s addr=%s cache_backend=%s two_opt_max_stops=%d",
		path, cfg.Server.Addr, cfg.Cache.Backend, cfg.Optimizer.TwoOptMaxStops)
	return cfg, nil
}

func applyEnvOverrides(cfg *database.AppConfig) error {
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Directions.Provider = getEnv("DIRECTIONS_PROVIDER", cfg.Directions.Provider)
	cfg.Directions.APIKey = getEnv("DIRECTIONS_API_KEY", cfg.Directions.APIKey)
	cfg.Directions.BaseURL = getEnv("DIRECTIONS_BASE_URL", cfg.Directions.BaseURL)
	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)

	if v := os.Getenv("TWO_OPT_MAX_STOPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TWO_OPT_MAX_STOPS %q: %w", v, err)
		}
		cfg.Optimizer.TwoOptMaxStops = n
	}

	return cfg.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
