package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Every section has a working
// default so the binary runs with no config file at all; the Postgres,
// Redis and Kafka sinks stay disabled unless switched on explicitly.
type Config struct {
	OutputPath string `yaml:"output_path"`
	LogLevel   string `yaml:"log_level"`

	Engine struct {
		// MigrateReadds switches the re-add handling from the
		// parity-preserving overwrite to an explicit detach-and-reinsert.
		MigrateReadds bool `yaml:"migrate_readds"`
	} `yaml:"engine"`

	HTTP struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"http"`

	Postgres struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"postgres"`

	Redis struct {
		Enabled    bool   `yaml:"enabled"`
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

func defaults() Config {
	var cfg Config
	cfg.OutputPath = "mbp_output.csv"
	cfg.LogLevel = "info"
	cfg.HTTP.Port = 8080
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTLSeconds = 300
	cfg.Kafka.Topic = "mbp-snapshots"
	return cfg
}

// Load reads the YAML config at path on top of the defaults. A missing
// file is not an error; environment variables override the secrets
// (MBP_POSTGRES_DSN, MBP_REDIS_PASSWORD) so they can live in .env
// instead of the config file.
func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if dsn := os.Getenv("MBP_POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if pw := os.Getenv("MBP_REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return cfg, fmt.Errorf("invalid http port %d", cfg.HTTP.Port)
	}
	if cfg.Postgres.Enabled && cfg.Postgres.DSN == "" {
		return cfg, fmt.Errorf("postgres enabled but no dsn configured")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return cfg, fmt.Errorf("kafka enabled but no brokers configured")
	}
	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
