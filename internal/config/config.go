/**
 * @description
 * This file handles the configuration management for the waitlist-service.
 * It uses the 'viper' library to load configuration from environment variables
 * or a local .env file, providing a centralized way to manage application settings.
 */
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseDriver       string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RunMigrations        bool   `mapstructure:"RUN_MIGRATIONS"`
	PrivacyPolicyVersion string `mapstructure:"PRIVACY_POLICY_VERSION"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	SubscriberExchange   string `mapstructure:"SUBSCRIBER_EXCHANGE"`
	AdminJWTSecret       string `mapstructure:"ADMIN_JWT_SECRET"`
	CORSAllowedOrigins   string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// AllowedOrigins splits the comma separated CORS_ALLOWED_ORIGINS value.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// LoadConfig reads configuration from an optional .env file and environment variables.
func LoadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", DriverPostgres)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("PRIVACY_POLICY_VERSION", "25w29a")
	viper.SetDefault("SUBSCRIBER_EXCHANGE", "waitlist_events")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_PORT",
		"DATABASE_DRIVER",
		"DATABASE_URL",
		"RUN_MIGRATIONS",
		"PRIVACY_POLICY_VERSION",
		"RABBITMQ_URL",
		"SUBSCRIBER_EXCHANGE",
		"ADMIN_JWT_SECRET",
		"CORS_ALLOWED_ORIGINS",
	} {
		_ = viper.BindEnv(key)
	}

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("reading config file: %w", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decoding config: %w", err)
	}

	config.DatabaseDriver = strings.ToLower(strings.TrimSpace(config.DatabaseDriver))
	switch config.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return config, fmt.Errorf("unsupported DATABASE_DRIVER %q", config.DatabaseDriver)
	}
	if strings.TrimSpace(config.DatabaseURL) == "" {
		return config, errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(config.PrivacyPolicyVersion) == "" {
		return config, errors.New("PRIVACY_POLICY_VERSION must not be empty")
	}
	return config, nil
}
