package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	StorageFlatFile = "flatfile"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the reservation engine
type Config struct {
	// Engine policy configuration
	Engine EngineConfig

	// Storage configuration
	Storage StorageConfig

	// Database configuration (postgres backend)
	Database DatabaseConfig

	// Payment simulator configuration
	Payment PaymentConfig

	// Identity/token configuration
	Identity IdentityConfig

	// Logging configuration
	LogLevel string
}

// EngineConfig holds reservation policy knobs
type EngineConfig struct {
	PNRFloor            uint64
	MaxGroupSize        int
	ConfirmedRefundRate float64
	WaitlistRefundRate  float64
}

// StorageConfig selects and locates the snapshot backend
type StorageConfig struct {
	Backend string // flatfile or postgres
	DataDir string // flatfile backend root
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// PaymentConfig holds settlement simulator configuration
type PaymentConfig struct {
	SuccessRate float64
	Seed        int64 // zero means non-deterministic
}

// IdentityConfig holds credential and token configuration
type IdentityConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	BcryptCost  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Engine: EngineConfig{
			PNRFloor:            uint64(getEnvAsInt("PNR_FLOOR", 100000000000)),
			MaxGroupSize:        getEnvAsInt("MAX_GROUP_SIZE", 6),
			ConfirmedRefundRate: getEnvAsFloat("CONFIRMED_REFUND_RATE", 0.8),
			WaitlistRefundRate:  getEnvAsFloat("WAITLIST_REFUND_RATE", 1.0),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", StorageFlatFile),
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Payment: PaymentConfig{
			SuccessRate: getEnvAsFloat("PAYMENT_SUCCESS_RATE", 0.8),
			Seed:        int64(getEnvAsInt("PAYMENT_SEED", 0)),
		},
		Identity: IdentityConfig{
			TokenSecret: getEnv("TOKEN_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("TOKEN_EXPIRY", 3600)) * time.Second,
			BcryptCost:  getEnvAsInt("BCRYPT_COST", 12),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFlatFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the flatfile backend")
		}
	case StoragePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'flatfile' or 'postgres')", c.Storage.Backend)
	}

	if c.Engine.MaxGroupSize <= 0 {
		return fmt.Errorf("MAX_GROUP_SIZE must be positive")
	}
	if c.Engine.ConfirmedRefundRate < 0 || c.Engine.ConfirmedRefundRate > 1 {
		return fmt.Errorf("CONFIRMED_REFUND_RATE must be between 0 and 1")
	}
	if c.Engine.WaitlistRefundRate < 0 || c.Engine.WaitlistRefundRate > 1 {
		return fmt.Errorf("WAITLIST_REFUND_RATE must be between 0 and 1")
	}
	if c.Payment.SuccessRate < 0 || c.Payment.SuccessRate > 1 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be between 0 and 1")
	}
	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %f", key, defaultValue)
		return defaultValue
	}
	return value
}
