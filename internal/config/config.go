package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Oracle   OracleConfig
	Pipeline PipelineConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type OracleConfig struct {
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RatePerSecond  float64
	RateBurst      int
}

type PipelineConfig struct {
	WorkerConcurrency   int
	DocumentConcurrency int
}

type StorageConfig struct {
	MaxFileSize int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Oracle: OracleConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			RequestTimeout: getEnvAsDuration("ORACLE_REQUEST_TIMEOUT", "60s"),
			MaxRetries:     getEnvAsInt("ORACLE_MAX_RETRIES", 3),
			BaseDelay:      getEnvAsDuration("ORACLE_RETRY_BASE_DELAY", "2s"),
			MaxDelay:       getEnvAsDuration("ORACLE_RETRY_MAX_DELAY", "30s"),
			RatePerSecond:  getEnvAsFloat("ORACLE_RATE_PER_SECOND", 2),
			RateBurst:      getEnvAsInt("ORACLE_RATE_BURST", 5),
		},
		Pipeline: PipelineConfig{
			WorkerConcurrency:   getEnvAsInt("WORKER_CONCURRENCY", 3),
			DocumentConcurrency: getEnvAsInt("DOCUMENT_CONCURRENCY", 4),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
	}
}

// Validate checks the oracle configuration before the first call. A
// missing credential is a fatal configuration error, not something to
// retry per request.
func (c *Config) Validate() error {
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	if c.Oracle.RequestTimeout <= 0 {
		return fmt.Errorf("ORACLE_REQUEST_TIMEOUT must be positive")
	}
	if c.Oracle.MaxRetries < 1 {
		return fmt.Errorf("ORACLE_MAX_RETRIES must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
