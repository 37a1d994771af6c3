package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	CORSAllowedOrigins []string
	// WriteRateLimit caps mutating requests per client, in limiter notation
	// such as "120-M" for 120 per minute.
	WriteRateLimit string
	// ExpiringSoonDays is the window used to flag batches as expiring soon.
	ExpiringSoonDays int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("WRITE_RATE_LIMIT", "120-M")
	viper.SetDefault("EXPIRING_SOON_DAYS", 30)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	origins := viper.GetString("CORS_ALLOWED_ORIGINS")
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.WriteRateLimit = viper.GetString("WRITE_RATE_LIMIT")

	cfg.ExpiringSoonDays = viper.GetInt("EXPIRING_SOON_DAYS")
	if cfg.ExpiringSoonDays <= 0 {
		log.Printf("Warning: Invalid value for EXPIRING_SOON_DAYS (%d). Defaulting to 30.\n", cfg.ExpiringSoonDays)
		cfg.ExpiringSoonDays = 30
	}

	return cfg, nil
}
