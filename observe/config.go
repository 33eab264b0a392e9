package observe

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string        `yaml:"service_name" validate:"required"`
	Version     string        `yaml:"version"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Logging     LoggingConfig `yaml:"logging"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter" validate:"omitempty,oneof=otlp jaeger stdout none"`
	SamplePct float64 `yaml:"sample_pct" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=otlp prometheus stdout none"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps a failing field to the sentinel reported for it.
var fieldErrors = map[string]error{
	"Config.ServiceName":       ErrMissingServiceName,
	"Config.Tracing.Exporter":  ErrInvalidTracingExporter,
	"Config.Tracing.SamplePct": ErrInvalidSamplePct,
	"Config.Metrics.Exporter":  ErrInvalidMetricsExporter,
	"Config.Logging.Level":     ErrInvalidLogLevel,
}

// Validate validates the configuration. The returned error wraps the
// sentinel for the first failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("observe: invalid config: %w", err)
	}

	first := verrs[0]
	sentinel, ok := fieldErrors[first.StructNamespace()]
	if !ok {
		return fmt.Errorf("observe: invalid config: %w", err)
	}
	return fmt.Errorf("%w: %s=%v", sentinel, first.Field(), first.Value())
}

// ParseConfig decodes a YAML document into a Config and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("observe: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
