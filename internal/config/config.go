package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/config"

	"github.com/dukerupert/pointlog/internal/archive"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Progress ProgressConfig `yaml:"progress"`
	Todos    TodosConfig    `yaml:"todos"`
	Logging  LoggingConfig  `yaml:"logging"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"`
	DBPath      string `yaml:"db_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type ProgressConfig struct {
	TimeZone string  `yaml:"time_zone"`
	Goal     float64 `yaml:"goal"`
}

type TodosConfig struct {
	RetentionDays int `yaml:"retention_days"`
	// ExpireCron schedules ExpireCompleted while serving. Empty disables it.
	ExpireCron string `yaml:"expire_cron"`
}

// ArchiveConfig is where `pointlog export` uploads sealed archives. Local
// files are always written; S3 is used only when fully configured.
type ArchiveConfig struct {
	S3 archive.S3Config `yaml:"s3"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080"},
		Storage:  StorageConfig{Backend: BackendSQLite, DBPath: "pointlog.db"},
		Progress: ProgressConfig{TimeZone: "Europe/Zagreb", Goal: 1000},
		Todos:    TodosConfig{RetentionDays: 1},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Archive:  ArchiveConfig{S3: archive.S3Config{Region: "auto"}},
	}
}

// Load reads .env if present, then the YAML file named by POINTLOG_CONFIG
// (if set), then POINTLOG_* environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFile(os.Getenv("POINTLOG_CONFIG"))
}

// LoadFile builds a Config from defaults, an optional YAML file and the
// environment. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		provider, err := config.NewYAML(
			config.File(path),
			config.Expand(os.LookupEnv),
		)
		if err != nil {
			return nil, fmt.Errorf("create config provider: %w", err)
		}
		if err := provider.Get(config.Root).Populate(&cfg); err != nil {
			return nil, fmt.Errorf("populate config: %w", err)
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) overrideFromEnv() error {
	if val := os.Getenv("POINTLOG_PORT"); val != "" {
		c.Server.Port = val
	}
	if val := os.Getenv("POINTLOG_BACKEND"); val != "" {
		c.Storage.Backend = val
	}
	if val := os.Getenv("POINTLOG_DB_PATH"); val != "" {
		c.Storage.DBPath = val
	}
	if val := os.Getenv("POINTLOG_POSTGRES_DSN"); val != "" {
		c.Storage.PostgresDSN = val
	}
	if val := os.Getenv("POINTLOG_TIME_ZONE"); val != "" {
		c.Progress.TimeZone = val
	}
	if val := os.Getenv("POINTLOG_GOAL"); val != "" {
		goal, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("POINTLOG_GOAL: %w", err)
		}
		c.Progress.Goal = goal
	}
	if val := os.Getenv("POINTLOG_RETENTION_DAYS"); val != "" {
		days, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("POINTLOG_RETENTION_DAYS: %w", err)
		}
		c.Todos.RetentionDays = days
	}
	if val, ok := os.LookupEnv("POINTLOG_EXPIRE_CRON"); ok {
		c.Todos.ExpireCron = val
	}
	if val := os.Getenv("POINTLOG_S3_ENDPOINT"); val != "" {
		c.Archive.S3.Endpoint = val
	}
	if val := os.Getenv("POINTLOG_S3_BUCKET"); val != "" {
		c.Archive.S3.Bucket = val
	}
	if val := os.Getenv("POINTLOG_S3_REGION"); val != "" {
		c.Archive.S3.Region = val
	}
	if val := os.Getenv("POINTLOG_S3_ACCESS_KEY"); val != "" {
		c.Archive.S3.AccessKey = val
	}
	if val := os.Getenv("POINTLOG_S3_SECRET_KEY"); val != "" {
		c.Archive.S3.SecretKey = val
	}
	if val := os.Getenv("POINTLOG_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("POINTLOG_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	return nil
}

func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("storage.db_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Progress.Goal <= 0 {
		return fmt.Errorf("progress.goal must be positive, got %v", c.Progress.Goal)
	}
	if c.Todos.RetentionDays <= 0 {
		return fmt.Errorf("todos.retention_days must be positive, got %d", c.Todos.RetentionDays)
	}
	return nil
}
