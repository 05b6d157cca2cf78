package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the YAML configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults
// and validates the result. Unknown fields are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg is coherent, returning a joined error
// listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Source.Channels <= 0 {
		errs = append(errs, fmt.Errorf("source.channels must be > 0, got %d", cfg.Source.Channels))
	}
	if cfg.Source.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("source.sample_rate must be > 0, got %g", cfg.Source.SampleRate))
	}
	if b := cfg.Source.Bursts; b != nil {
		if b.PerSecond <= 0 || b.DurationS <= 0 || b.Gain <= 0 {
			errs = append(errs, fmt.Errorf("source.bursts requires positive per_second, duration_s, and gain"))
		}
	}

	if cfg.Buffer.CapacityS <= 0 {
		errs = append(errs, fmt.Errorf("buffer.capacity_s must be > 0, got %g", cfg.Buffer.CapacityS))
	}

	if cfg.Scheduler.WindowS <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.window_s must be > 0, got %g", cfg.Scheduler.WindowS))
	}
	if cfg.Scheduler.StepS <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.step_s must be > 0, got %g", cfg.Scheduler.StepS))
	}
	if cfg.Scheduler.WindowS > 0 && cfg.Buffer.CapacityS > 0 && cfg.Scheduler.WindowS > cfg.Buffer.CapacityS {
		errs = append(errs, fmt.Errorf("scheduler.window_s %g exceeds buffer.capacity_s %g", cfg.Scheduler.WindowS, cfg.Buffer.CapacityS))
	}

	if cfg.Features.WaveletLevel <= 0 {
		errs = append(errs, fmt.Errorf("features.wavelet_level must be > 0, got %d", cfg.Features.WaveletLevel))
	}

	if !cfg.Sink.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("sink.kind %q is invalid; valid values: log, kafka", cfg.Sink.Kind))
	}
	if cfg.Sink.Kind == SinkKafka {
		if cfg.Sink.Kafka == nil || len(cfg.Sink.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("sink.kafka.brokers is required for the kafka sink"))
		}
		if cfg.Sink.Kafka == nil || cfg.Sink.Kafka.Topic == "" {
			errs = append(errs, errors.New("sink.kafka.topic is required for the kafka sink"))
		}
	}

	// Operator parameters get their deep validation when the pipeline is
	// built; here only the names need to resolve.
	for i, spec := range cfg.Pipeline {
		if spec.Name == "" {
			errs = append(errs, fmt.Errorf("pipeline[%d] is missing an operator name", i))
		}
	}

	return errors.Join(errs...)
}
