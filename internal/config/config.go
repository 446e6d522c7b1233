package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	DatabaseURL      string   `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32    `mapstructure:"DB_MIN_CONNS"`
	ReviewThreshold  float64  `mapstructure:"REVIEW_CONFIDENCE_THRESHOLD"`
	SuggestURL       string   `mapstructure:"SUGGEST_URL"`
	SuggestAPIKey    string   `mapstructure:"SUGGEST_API_KEY"`
	SuggestTimeoutMS int      `mapstructure:"SUGGEST_TIMEOUT_MS"`
	JWTSigningKey    string   `mapstructure:"JWT_SIGNING_KEY"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	MigrationsDir    string   `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("REVIEW_CONFIDENCE_THRESHOLD", 0.7)
	v.SetDefault("SUGGEST_TIMEOUT_MS", 5000)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REVIEW_CONFIDENCE_THRESHOLD")
	v.BindEnv("SUGGEST_URL")
	v.BindEnv("SUGGEST_API_KEY")
	v.BindEnv("SUGGEST_TIMEOUT_MS")
	v.BindEnv("JWT_SIGNING_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ReviewThreshold <= 0 || cfg.ReviewThreshold > 1 {
		return nil, fmt.Errorf("REVIEW_CONFIDENCE_THRESHOLD must be in (0, 1], got %v", cfg.ReviewThreshold)
	}

	if !cfg.IsDev() && cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY is required outside development")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SuggestTimeout returns the code-suggestion client timeout as a duration.
func (c *Config) SuggestTimeout() time.Duration {
	return time.Duration(c.SuggestTimeoutMS) * time.Millisecond
}
