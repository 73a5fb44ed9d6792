package config

import (
	"time"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/executor"
	"github.com/kbukum/streamkit/logger"
)

// AppConfig is the configuration of the streamkit CLI.
//
//	name: streamkit
//	environment: development
//	logging:
//	  level: info
//	stream:
//	  parallel: false
//	  workers: 8
//	  batch_size: 64
//	  executor: pool
//	telemetry:
//	  enabled: false
type AppConfig struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Stream      StreamConfig    `yaml:"stream" mapstructure:"stream"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// StreamConfig controls how demo pipelines are evaluated.
type StreamConfig struct {
	// Parallel switches the demo pipelines that support it to parallel mode.
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`
	// Workers bounds the executor; 0 means one per CPU.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	// BatchSize is the number of elements fanned out per parallel step.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size" validate:"gte=1"`
	// Executor selects the executor implementation.
	Executor string `yaml:"executor" mapstructure:"executor" validate:"oneof=pool group inline"`
}

// NewExecutor builds the configured executor.
func (c *StreamConfig) NewExecutor() executor.Executor {
	return executor.New(c.Executor, c.Workers)
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "streamkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()

	if c.Stream.BatchSize == 0 {
		c.Stream.BatchSize = 64
	}
	if c.Stream.Executor == "" {
		c.Stream.Executor = executor.KindPool
	}

	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
}

// Validate checks struct constraints and the logging section. Failures are
// reported as INVALID_CONFIG.
func (c *AppConfig) Validate() error {
	if err := Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig(err.Error()).WithCause(err)
	}
	return nil
}

// LoadApp loads, defaults and validates the CLI configuration.
func LoadApp(opts ...LoaderOption) (*AppConfig, error) {
	var cfg AppConfig
	if err := Load("streamkit", &cfg, opts...); err != nil {
		return nil, errors.InvalidConfig(err.Error()).WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
