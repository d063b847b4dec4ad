package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. SCHOOL_DATABASE_URL.
const EnvPrefix = "SCHOOL"

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first when present; variables
// already set in the process environment are not overridden by it.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.verification_token_lifetime_minutes", 24*60)
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.verification_url", "http://localhost:5173/auth/verify-email")
	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
}

// bindEnv registers every key explicitly. AutomaticEnv alone does not make
// Unmarshal see keys that have no default or config file entry.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"server.read_timeout_seconds",
		"server.write_timeout_seconds",
		"database.url",
		"database.max_open_conns",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.verification_token_lifetime_minutes",
		"mail.smtp_host",
		"mail.smtp_port",
		"mail.smtp_username",
		"mail.smtp_password",
		"mail.from",
		"mail.verification_url",
		"redis.addr",
		"rate_limit.login_per_minute",
		"task.worker_count",
		"task.queue_size",
		"task.stuck_task_age_minutes",
	} {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}

// LookupDatabaseURL returns the database URL from the environment without
// loading or validating the rest of the configuration. It is used by tools
// such as the admin bootstrap command that only need storage access.
func LookupDatabaseURL() string {
	_ = godotenv.Load()
	if url := os.Getenv(EnvPrefix + "_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}
