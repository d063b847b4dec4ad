package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Mail      MailConfig      `mapstructure:"mail"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Task      TaskConfig      `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                int    `mapstructure:"port"                  validate:"required,gt=0,lt=65536"`
	LogLevel            string `mapstructure:"log_level"             validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"  validate:"gte=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// VerificationTokenLifetimeMinutes bounds the validity of links sent by email.
	VerificationTokenLifetimeMinutes int `mapstructure:"verification_token_lifetime_minutes" validate:"required,gt=0"`
}

// MailConfig configures outbound email. An empty SMTPHost disables delivery
// and verification links are only logged.
type MailConfig struct {
	SMTPHost        string `mapstructure:"smtp_host"`
	SMTPPort        int    `mapstructure:"smtp_port"        validate:"gte=0,lt=65536"`
	SMTPUsername    string `mapstructure:"smtp_username"`
	SMTPPassword    string `mapstructure:"smtp_password"`
	From            string `mapstructure:"from"             validate:"omitempty,email"`
	VerificationURL string `mapstructure:"verification_url" validate:"required,url"`
}

// RedisConfig points at the Redis instance backing the login rate limiter.
// Leaving Addr empty disables rate limiting.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// RateLimitConfig contains request throttling settings.
type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute" validate:"gte=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"gt=0"`
	QueueSize           int `mapstructure:"queue_size"             validate:"gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gt=0"`
}
