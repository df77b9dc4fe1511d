package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values read from the environment.
type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	Timezone           string
	Location           *time.Location
	SaleNumberAttempts int
	AutoMigrate        bool
}

// Load reads configuration from environment variables with reasonable defaults.
// Call godotenv.Load before it to pick up a local .env file.
func Load() Config {
	cfg := Config{
		Port:               getEnv("PORT", "3000"),
		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		Timezone:           getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		SaleNumberAttempts: getEnvInt("SALE_NUMBER_ATTEMPTS", 5),
		AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Printf("⚠️ invalid PORT value %q, defaulting to 3000", cfg.Port)
		cfg.Port = "3000"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_NAME", "vendas"),
			getEnv("DB_PORT", "5432"),
			cfg.Timezone,
		)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		// Fallback to UTC-3 if timezone data is not available
		log.Printf("⚠️ timezone %q not available, using UTC-3", cfg.Timezone)
		loc = time.FixedZone("BRT", -3*60*60)
	}
	cfg.Location = loc

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️ invalid %s value %q, defaulting to %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️ invalid %s value %q, defaulting to %t", key, v, fallback)
		return fallback
	}
	return b
}
