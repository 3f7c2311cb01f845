package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/spf13/viper"
)

// Configuration is the root config for the credits service. Values are
// read from config.yaml when present and overridden by environment
// variables (CIRCE_SERVER_PORT, CIRCE_POSTGRES_HOST, ...).
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	PaperID    PaperIDConfig    `mapstructure:"paperid"`
	Email      EmailConfig      `mapstructure:"email"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level"`
}

type PostgresConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	User                  string `mapstructure:"user"`
	Password              string `mapstructure:"password"`
	DBName                string `mapstructure:"dbname"`
	SSLMode               string `mapstructure:"sslmode"`
	MaxOpenConns          int    `mapstructure:"max_open_conns"`
	MaxIdleConns          int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinute int    `mapstructure:"conn_max_lifetime_minute"`
}

// DSN returns the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c PostgresConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinute) * time.Minute
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// PaperIDConfig configures the hosted-invoice billing gateway.
type PaperIDConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

// NewConfig loads configuration from file and environment.
func NewConfig() (*Configuration, error) {
	// Best effort; env vars may be set by the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CIRCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read config file").
				Mark(ierr.ErrInternal)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrInternal)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "circe")
	v.SetDefault("postgres.dbname", "circe_credits")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minute", 30)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("paperid.base_url", "https://api.paper.id/v1")
	v.SetDefault("paperid.request_timeout", 30*time.Second)
	v.SetDefault("email.enabled", false)
}

// Validate checks required fields that have no safe defaults.
func (c *Configuration) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ierr.NewErrorf("invalid server port: %d", c.Server.Port).
			Mark(ierr.ErrValidation)
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return ierr.NewError("sentry is enabled but dsn is not set").
			Mark(ierr.ErrValidation)
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return ierr.NewError("email is enabled but api_key is not set").
			Mark(ierr.ErrValidation)
	}
	return nil
}
