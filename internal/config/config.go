package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the HTTP server settings.
type Server struct {
	Address string `mapstructure:"address"`
	Debug   bool   `mapstructure:"debug"`
}

// DB holds the database connection parameters.
type DB struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Storage describes where rendered report files are kept.
type Storage struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"basepath"`
	S3       S3     `mapstructure:"s3"`
}

// S3 holds the settings for S3-compatible storage.
type S3 struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Logging holds the logger settings.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Auth holds the viewer token settings.
type Auth struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Config groups all configuration sections.
type Config struct {
	Server  Server  `mapstructure:"server"`
	DB      DB      `mapstructure:"database"`
	Storage Storage `mapstructure:"storage"`
	Logging Logging `mapstructure:"logging"`
	Auth    Auth    `mapstructure:"auth"`
}

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}

// Load reads the configuration from a config file and the environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/report-gen")

	// APP_DATABASE_DSN overrides database.dsn and so on
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvironmentVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debug", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "report_gen.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.basepath", "/var/lib/report-gen/reports")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "report-gen-bucket")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

func bindEnvironmentVariables(v *viper.Viper) {
	v.BindEnv("server.address", "APP_SERVER_ADDRESS")
	v.BindEnv("server.debug", "APP_SERVER_DEBUG")

	v.BindEnv("database.driver", "APP_DATABASE_DRIVER")
	v.BindEnv("database.dsn", "APP_DATABASE_DSN")

	v.BindEnv("storage.type", "APP_STORAGE_TYPE")
	v.BindEnv("storage.basepath", "APP_STORAGE_BASEPATH")
	v.BindEnv("storage.s3.region", "APP_STORAGE_S3_REGION")
	v.BindEnv("storage.s3.bucket", "APP_STORAGE_S3_BUCKET")
	v.BindEnv("storage.s3.endpoint", "APP_STORAGE_S3_ENDPOINT")
	v.BindEnv("storage.s3.access_key", "APP_STORAGE_S3_ACCESS_KEY")
	v.BindEnv("storage.s3.secret_key", "APP_STORAGE_S3_SECRET_KEY")

	v.BindEnv("logging.level", "APP_LOGGING_LEVEL")
	v.BindEnv("logging.format", "APP_LOGGING_FORMAT")

	v.BindEnv("auth.secret", "APP_AUTH_SECRET")
	v.BindEnv("auth.token_ttl", "APP_AUTH_TOKEN_TTL")
}

func validateConfig(cfg Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return fmt.Errorf("database driver must be 'postgres' or 'sqlite', got: %s", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}

	if cfg.Storage.Type != "local" && cfg.Storage.Type != "s3" {
		return fmt.Errorf("storage type must be 'local' or 's3', got: %s", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "local" && cfg.Storage.BasePath == "" {
		return fmt.Errorf("storage basepath cannot be empty for local storage")
	}
	if cfg.Storage.Type == "s3" {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region cannot be empty")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	}

	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		return fmt.Errorf("invalid logging level: %s. Valid levels: %v", cfg.Logging.Level, validLogLevels)
	}

	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth secret cannot be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}

	return nil
}

// IsDevelopment returns true when the server runs in debug mode
func (c Config) IsDevelopment() bool {
	return c.Server.Debug
}

// String returns the configuration without secrets
func (c Config) String() string {
	s3 := c.Storage.S3
	s3.AccessKey, s3.SecretKey = "[HIDDEN]", "[HIDDEN]"
	storage := c.Storage
	storage.S3 = s3
	return fmt.Sprintf("Config{Server: %+v, DB: {Driver: %s, DSN: [HIDDEN]}, Storage: %+v, Logging: %+v, Auth: {TokenTTL: %s}}",
		c.Server, c.DB.Driver, storage, c.Logging, c.Auth.TokenTTL)
}
