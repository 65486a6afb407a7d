package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr    = ":8080"
	defaultHorizonDays   = 7
	defaultUrgencyDays   = 3
	defaultRetentionDays = 30
	defaultSweepRule     = "FREQ=DAILY;BYHOUR=3;BYMINUTE=0;BYSECOND=0"
	defaultSweepTimeout  = 5 * time.Minute
	defaultLogDir        = "logs"

	envDatabaseURL = "DATABASE_URL"
	envListenAddr  = "LISTEN_ADDR"
)

// FeedConfig controls the windows of the notification feed
type FeedConfig struct {
	HorizonDays int `yaml:"horizonDays" validate:"min=0"`
	UrgencyDays int `yaml:"urgencyDays" validate:"min=0,ltefield=HorizonDays"`
}

// RetentionConfig controls the schedule retention sweep
type RetentionConfig struct {
	Days          int  `yaml:"days" validate:"min=1"`
	Transactional bool `yaml:"transactional"`
	// Schedule is an RFC 5545 recurrence rule for the recurring sweep
	Schedule string        `yaml:"schedule" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
}

// PoolConfig tunes the database connection pool. Zero values keep the driver defaults.
type PoolConfig struct {
	MaxConns          int32         `yaml:"maxConns" validate:"min=0"`
	MinConns          int32         `yaml:"minConns" validate:"min=0"`
	MaxConnLifetime   time.Duration `yaml:"maxConnLifetime" validate:"min=0"`
	MaxConnIdleTime   time.Duration `yaml:"maxConnIdleTime" validate:"min=0"`
	HealthCheckPeriod time.Duration `yaml:"healthCheckPeriod" validate:"min=0"`
}

// LoggingConfig controls the log file location and levels
type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"consoleLevel" validate:"omitempty,oneof=debug info warn error"`
	FileLevel    string `yaml:"fileLevel" validate:"omitempty,oneof=debug info warn error"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string          `yaml:"databaseURL" validate:"required"`
	ListenAddr  string          `yaml:"listenAddr" validate:"required"`
	Feed        FeedConfig      `yaml:"feed"`
	Retention   RetentionConfig `yaml:"retention"`
	Pool        PoolConfig      `yaml:"pool"`
	Logging     LoggingConfig   `yaml:"logging"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used for any field the file leaves out
func Default() *Config {
	return &Config{
		ListenAddr: defaultListenAddr,
		Feed: FeedConfig{
			HorizonDays: defaultHorizonDays,
			UrgencyDays: defaultUrgencyDays,
		},
		Retention: RetentionConfig{
			Days:     defaultRetentionDays,
			Schedule: defaultSweepRule,
			Timeout:  defaultSweepTimeout,
		},
		Logging: LoggingConfig{
			Dir:          defaultLogDir,
			ConsoleLevel: "info",
			FileLevel:    "debug",
		},
	}
}

// Load loads and validates the configuration for env.
// .env.<env> and .env are loaded into the environment first, then rota_config.<env>.yaml
// (or rota_config.yaml) is read from the current directory or the user's home directory.
// DATABASE_URL and LISTEN_ADDR override the file.
func Load(env string) (*Config, error) {
	if err := loadEnvFiles(env); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and checks the sweep rule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	r, err := rrule.StrToRRule(cfg.Retention.Schedule)
	if err != nil {
		return fmt.Errorf("invalid rrule in retention.schedule: %w", err)
	}
	if r.OrigOptions.Freq > rrule.HOURLY {
		return fmt.Errorf("invalid rrule in retention.schedule: %q runs more often than hourly", cfg.Retention.Schedule)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
}

// loadEnvFiles loads .env.<env> then .env. Variables already set are never overwritten, so
// the real environment wins over .env.<env>, which wins over .env.
func loadEnvFiles(env string) error {
	for _, name := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// findConfigFile searches for rota_config.<env>.yaml and then rota_config.yaml in the
// current directory and then the home directory
func findConfigFile(env string) (string, error) {
	names := []string{fmt.Sprintf("rota_config.%s.yaml", env), "rota_config.yaml"}

	dirs := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, homeDir)
	}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("none of %v found in current directory or home directory", names)
}
