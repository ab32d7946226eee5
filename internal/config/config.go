package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port               string   `yaml:"port" env:"SERVER_PORT"`
		Mode               string   `yaml:"mode" env:"SERVER_MODE"`
		MaxMultipartMemory int64    `yaml:"max_multipart_memory" env:"SERVER_MAX_MULTIPART_MEMORY"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		CORSOrigins        []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		BadgerPath      string `yaml:"badger_path" env:"DB_BADGER_PATH"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Endpoint      string `yaml:"endpoint" env:"STORJ_ENDPOINT"`
		Region        string `yaml:"region" env:"STORJ_REGION"`
		AccessKey     string `yaml:"access_key" env:"STORJ_ACCESS_KEY"`
		SecretKey     string `yaml:"secret_key" env:"STORJ_SECRET_KEY"`
		Bucket        string `yaml:"bucket" env:"STORJ_BUCKET_NAME"`
		UseSSL        bool   `yaml:"use_ssl" env:"STORJ_USE_SSL"`
		PublicHost    string `yaml:"public_host" env:"STORJ_PUBLIC_HOST"`
		ShareID       string `yaml:"share_id" env:"STORJ_SHARE_ID"`
		PathPrefix    string `yaml:"path_prefix" env:"STORJ_PATH_PREFIX"`
		MaxFileSize   int64  `yaml:"max_file_size" env:"STORJ_MAX_FILE_SIZE"`
		UploadTimeout string `yaml:"upload_timeout" env:"STORJ_UPLOAD_TIMEOUT"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from an optional .env file, a YAML file and environment variables.
// Precedence, lowest first: defaults, YAML, environment.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.MaxMultipartMemory = 5 << 20
	config.Server.ShutdownTimeout = "10s"
	config.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "filechat"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.BadgerPath = "data/messages"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "filechat"

	config.Storage.Endpoint = "gateway.storjshare.io"
	config.Storage.Region = "us-east-1"
	config.Storage.UseSSL = true
	config.Storage.PublicHost = "link.storjshare.io"
	config.Storage.ShareID = "jxnzhdehsvkhldxdburisb53ogca"
	config.Storage.PathPrefix = "/vau7t/"
	config.Storage.MaxFileSize = 5 << 20
	config.Storage.UploadTimeout = "30s"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	case DriverBadger:
		if config.Database.BadgerPath == "" {
			return fmt.Errorf("badger path is required for the badger driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if config.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	if config.Storage.PublicHost == "" || config.Storage.ShareID == "" {
		return fmt.Errorf("storage public host and share id are required")
	}

	if config.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("storage max file size must be positive")
	}

	if _, err := time.ParseDuration(config.Storage.UploadTimeout); err != nil {
		return fmt.Errorf("invalid storage upload timeout: %w", err)
	}

	if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server shutdown timeout: %w", err)
	}

	if len(config.Server.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
