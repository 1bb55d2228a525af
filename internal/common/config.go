package common

import (
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration. The DSN selects the
// driver: postgres:// URLs open a pgx connection, anything else is treated
// as an SQLite path.
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// PipelineConfig holds extraction pipeline configuration.
type PipelineConfig struct {
	Workers     int
	QueueSize   int
	FileTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from INKOMST_-prefixed environment
// variables, falling back to defaults suitable for a local batch run.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("INKOMST")
	v.AutomaticEnv()

	v.SetDefault("db_dsn", "inkomst.db")
	v.SetDefault("db_max_open_conns", 1)
	v.SetDefault("db_dial_timeout", 3*time.Second)
	v.SetDefault("db_write_timeout", 30*time.Second)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("queue_size", 256)
	v.SetDefault("file_timeout", 2*time.Minute)
	v.SetDefault("log_level", "info")

	return &Config{
		Database: DatabaseConfig{
			DSN:          v.GetString("db_dsn"),
			MaxOpenConns: v.GetInt("db_max_open_conns"),
			DialTimeout:  v.GetDuration("db_dial_timeout"),
			WriteTimeout: v.GetDuration("db_write_timeout"),
		},
		Pipeline: PipelineConfig{
			Workers:     v.GetInt("workers"),
			QueueSize:   v.GetInt("queue_size"),
			FileTimeout: v.GetDuration("file_timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database DSN is required", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "workers must be positive", ErrInvalidInput)
	}
	if c.Pipeline.FileTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "file timeout must be positive", ErrInvalidInput)
	}
	return nil
}
