package logging

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the configuration bundle consumed by Service.Initialize.
// The zero value is not usable; start from DefaultConfig, FromEnv or
// LoadFile.
type Config struct {
	// LogFile is the destination path of the file sink. The path is not
	// pre-validated; open and write failures surface from the underlying
	// writer, not from Setup.
	LogFile string `env:"LOG_FILE" yaml:"log_file" validate:"required"`

	// PoolSize is the number of delivery workers. 1 preserves record order
	// and is effectively synchronous; values above 1 may reorder records
	// across workers.
	PoolSize int `env:"LOG_POOL_SIZE" envDefault:"1" yaml:"pool_size" validate:"gte=1"`

	Level          string `env:"LOG_LEVEL" envDefault:"info" yaml:"level" validate:"required"`
	WithTimestamp  bool   `env:"LOG_TIMESTAMP" envDefault:"true" yaml:"with_timestamp"`
	SkipFrameCount int    `env:"LOG_SKIP_FRAMES" yaml:"skip_frame_count" validate:"gte=0"`

	ConsoleNoColor    bool   `env:"LOG_CONSOLE_NO_COLOR" yaml:"console_no_color"`
	ConsoleTimeFormat string `env:"LOG_CONSOLE_TIME_FORMAT" yaml:"console_time_format"`

	LogFileMaxBackups int  `env:"LOG_FILE_MAX_BACKUPS" envDefault:"3" yaml:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays int  `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"7" yaml:"log_file_max_age_days" validate:"gte=0"`
	LogFileMaxSizeMB  int  `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"10" yaml:"log_file_max_size_mb" validate:"gte=0"`
	LogFileCompress   bool `env:"LOG_FILE_COMPRESS" yaml:"log_file_compress"`

	// ShutdownTimeoutMS bounds how long Close waits for in-flight log
	// operations and the pool flush. 0 means wait indefinitely.
	ShutdownTimeoutMS      int  `env:"LOG_SHUTDOWN_TIMEOUT_MS" envDefault:"1000" yaml:"shutdown_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutWarning bool `env:"LOG_SHUTDOWN_TIMEOUT_WARNING" yaml:"shutdown_timeout_warning"`
}

// DefaultConfig returns a Config with the package defaults applied.
// LogFile is left empty and must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		PoolSize:          1,
		Level:             "info",
		WithTimestamp:     true,
		LogFileMaxBackups: 3,
		LogFileMaxAgeDays: 7,
		LogFileMaxSizeMB:  10,
		ShutdownTimeoutMS: 1000,
	}
}

// FromEnv builds a Config from LOG_* environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing logging environment: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML config file. Fields absent from the file keep the
// DefaultConfig values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading logging config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing logging config %s: %w", path, err)
	}
	return cfg, nil
}
