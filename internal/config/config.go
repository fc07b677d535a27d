// Package config loads server configuration from defaults, an optional config file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmynk/osusu/internal/rosca"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all configuration for the server
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        int    `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`

	// Storage configuration
	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DBPath        string `mapstructure:"DB_PATH"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// JWT configuration
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	// Reminder configuration
	ReminderCheckpoints   string `mapstructure:"REMINDER_CHECKPOINTS"`
	ReminderWindowMinutes int    `mapstructure:"REMINDER_WINDOW_MINUTES"`
	ReminderTimezone      string `mapstructure:"REMINDER_TIMEZONE"`
	ReminderUserID        string `mapstructure:"REMINDER_USER_ID"`

	PayoutMarkMode string `mapstructure:"PAYOUT_MARK_MODE"`
	MetricsPath    string `mapstructure:"METRICS_PATH"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Override with environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	// Storage defaults
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "./data/osusu.db")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "osusu")

	// JWT defaults
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL_HOURS", 24)

	// Reminder defaults
	v.SetDefault("REMINDER_CHECKPOINTS", "07:00,14:00,19:00")
	v.SetDefault("REMINDER_WINDOW_MINUTES", 5)
	v.SetDefault("REMINDER_TIMEZONE", "Local")
	v.SetDefault("REMINDER_USER_ID", "")

	v.SetDefault("PAYOUT_MARK_MODE", string(rosca.MarkPermissive))
	v.SetDefault("METRICS_PATH", "/metrics")
}

func validate(config *Config) error {
	if config.Environment == "production" && config.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if config.Port <= 0 {
		return fmt.Errorf("PORT must be positive")
	}

	switch config.StoreDriver {
	case "sqlite":
		if config.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite store")
		}
	case "mongo":
		if config.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", config.StoreDriver)
	}

	switch rosca.MarkMode(config.PayoutMarkMode) {
	case rosca.MarkPermissive, rosca.MarkStrict:
	default:
		return fmt.Errorf("PAYOUT_MARK_MODE must be permissive or strict")
	}

	if _, err := config.Checkpoints(); err != nil {
		return err
	}
	if _, err := config.Location(); err != nil {
		return err
	}
	if config.ReminderWindowMinutes <= 0 {
		return fmt.Errorf("REMINDER_WINDOW_MINUTES must be positive")
	}
	if !strings.HasPrefix(config.MetricsPath, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}
	return nil
}

// Checkpoints parses the configured reminder checkpoints.
func (c *Config) Checkpoints() ([]rosca.Checkpoint, error) {
	return rosca.ParseCheckpoints(c.ReminderCheckpoints)
}

// Location resolves the reminder timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIMEZONE: %w", err)
	}
	return loc, nil
}

// ReminderWindow is the configured firing window after each checkpoint.
func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderWindowMinutes) * time.Minute
}

// TokenTTL is how long issued session tokens stay valid.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// MarkMode is the configured payout marking mode.
func (c *Config) MarkMode() rosca.MarkMode {
	return rosca.MarkMode(c.PayoutMarkMode)
}
