package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// StartingBalanceMinor is the server-assigned balance, in minor units,
	// given to every newly registered account.
	StartingBalanceMinor int64

	// MaxTransferAttempts bounds the engine's retries when a transfer keeps
	// losing against concurrent updates before it surfaces contention.
	MaxTransferAttempts int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "24h")
	viper.SetDefault("JWT_ISSUER", "money-transfer-app")
	viper.SetDefault("STARTING_BALANCE_MINOR", int64(100000)) // 1000.00 in minor units
	viper.SetDefault("MAX_TRANSFER_ATTEMPTS", 3)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 24 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.StartingBalanceMinor = viper.GetInt64("STARTING_BALANCE_MINOR")
	if cfg.StartingBalanceMinor < 0 {
		log.Printf("Warning: STARTING_BALANCE_MINOR is negative (%d). Defaulting to 0.\n", cfg.StartingBalanceMinor)
		cfg.StartingBalanceMinor = 0
	}

	cfg.MaxTransferAttempts = viper.GetInt("MAX_TRANSFER_ATTEMPTS")
	if cfg.MaxTransferAttempts < 1 {
		cfg.MaxTransferAttempts = 1
	}

	return cfg, nil
}
