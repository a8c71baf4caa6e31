// Package config loads application configuration from a YAML file overlaid
// with environment variables (prefix WATCHDOG), and parses the rules document
// that drives a validation run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Engine  EngineConfig  `yaml:"engine" envconfig:"ENGINE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	RunsDir   string `yaml:"runs_dir" envconfig:"RUNS_DIR"`
	RulesFile string `yaml:"rules_file" envconfig:"RULES_FILE"`
}

// EngineConfig tunes the validation engine.
type EngineConfig struct {
	// Workers sets the scan parallelism for pure rules. 1 means sequential.
	Workers int `yaml:"workers" envconfig:"WORKERS"`
	// RequireRules makes a run with zero enabled rules an error instead of
	// an all-pass.
	RequireRules bool `yaml:"require_rules" envconfig:"REQUIRE_RULES"`
}

// defaultConfig returns the built-in defaults. The YAML file overrides these,
// and environment variables override both.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/watchdog.log",
		},
		Paths: PathsConfig{
			RunsDir:   "data/runs",
			RulesFile: "rules.yml",
		},
		Engine: EngineConfig{
			Workers:      1,
			RequireRules: false,
		},
	}
}

// Load reads configuration from the optional YAML file and overlays
// environment variables. Environment values win.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration with an explicit config file path. A missing
// file is not an error; environment variables and defaults apply alone.
// Precedence: environment > file > defaults. The envconfig tags carry no
// defaults, so Process only touches fields whose variables are actually set
// and never clobbers file values.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("WATCHDOG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine workers must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// EnsureRunsDir creates the runs directory if needed and returns its path.
func (c *Config) EnsureRunsDir() (string, error) {
	if err := os.MkdirAll(c.Paths.RunsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create runs directory %s: %w", c.Paths.RunsDir, err)
	}
	return c.Paths.RunsDir, nil
}

func configFilePath() string {
	if p := os.Getenv("WATCHDOG_CONFIG"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yml")
}
