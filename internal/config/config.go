package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	Username          string
	StockfishPath     string
	StockfishDepth    int
	LogLevel          string
	BookDir           string
	IngestWorkerCount int
	IngestQueueSize   int
	MinGamesBound     int
	EloBandGap        int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:chessmetrics.db"),
		Username:          envOr("USERNAME", ""),
		StockfishPath:     envOr("STOCKFISH_PATH", "stockfish"),
		StockfishDepth:    envIntOr("STOCKFISH_DEPTH", 18),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		BookDir:           envOr("BOOK_DIR", ""),
		IngestWorkerCount: envIntOr("INGEST_WORKER_COUNT", 1),
		IngestQueueSize:   envIntOr("INGEST_QUEUE_SIZE", 32),
		MinGamesBound:     envIntOr("MIN_GAMES_BOUND", 1),
		EloBandGap:        envIntOr("ELO_BAND_GAP", 100),
	}
}

// Validate reports the first configuration value that would prevent the
// server from starting correctly.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.StockfishDepth < 1 || c.StockfishDepth > 40 {
		return fmt.Errorf("STOCKFISH_DEPTH must be between 1 and 40, got %d", c.StockfishDepth)
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if c.IngestWorkerCount < 1 {
		return fmt.Errorf("INGEST_WORKER_COUNT must be at least 1, got %d", c.IngestWorkerCount)
	}
	if c.IngestQueueSize < 1 {
		return fmt.Errorf("INGEST_QUEUE_SIZE must be at least 1, got %d", c.IngestQueueSize)
	}
	if c.MinGamesBound < 0 {
		return fmt.Errorf("MIN_GAMES_BOUND cannot be negative, got %d", c.MinGamesBound)
	}
	if c.EloBandGap < 50 {
		return fmt.Errorf("ELO_BAND_GAP must be at least 50, got %d", c.EloBandGap)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
