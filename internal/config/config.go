// Package config provides the configuration schema and loader for the
// biosigd streaming daemon.
package config

import (
	"github.com/cwbudde/algo-biosig/pipeline"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SinkKind selects the result sink implementation.
type SinkKind string

const (
	SinkLog   SinkKind = "log"
	SinkKafka SinkKind = "kafka"
)

// IsValid reports whether k is a recognised sink kind.
func (k SinkKind) IsValid() bool {
	return k == SinkLog || k == SinkKafka
}

// Config is the root configuration, typically loaded from a YAML file
// via Load or LoadFromReader.
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Source    SourceConfig      `yaml:"source"`
	Buffer    BufferConfig      `yaml:"buffer"`
	Pipeline  []pipeline.OpSpec `yaml:"pipeline"`
	Features  FeatureConfig     `yaml:"features"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Predictor PredictorConfig   `yaml:"predictor"`
	Sink      SinkConfig        `yaml:"sink"`
}

// ServerConfig holds logging and metrics settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the /metrics endpoint listens on.
	// Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity (default info).
	LogLevel LogLevel `yaml:"log_level"`

	// LogJSON switches the handler from text to JSON records.
	LogJSON bool `yaml:"log_json"`
}

// SourceConfig describes the simulated acquisition source.
type SourceConfig struct {
	Channels   int     `yaml:"channels"`
	SampleRate float64 `yaml:"sample_rate"`
	Seed       int64   `yaml:"seed"`

	// NoiseStd adds Gaussian noise when positive.
	NoiseStd float64 `yaml:"noise_std"`

	// Bursts enables EMG-style burst activity when present.
	Bursts *BurstConfig `yaml:"bursts"`
}

// BurstConfig parameterizes simulated EMG bursts.
type BurstConfig struct {
	PerSecond float64 `yaml:"per_second"`
	DurationS float64 `yaml:"duration_s"`
	Gain      float64 `yaml:"gain"`
}

// BufferConfig sizes the ring buffer.
type BufferConfig struct {
	// CapacityS is the buffer depth in seconds at the source rate.
	CapacityS float64 `yaml:"capacity_s"`
}

// FeatureConfig tunes the extractor.
type FeatureConfig struct {
	// WaveletLevel is the decomposition depth (default 3).
	WaveletLevel int `yaml:"wavelet_level"`
}

// SchedulerConfig holds the loop timing.
type SchedulerConfig struct {
	WindowS float64 `yaml:"window_s"`
	StepS   float64 `yaml:"step_s"`
}

// PredictorConfig configures the built-in threshold predictor.
type PredictorConfig struct {
	RMSThreshold float64 `yaml:"rms_threshold"`
}

// SinkConfig selects and configures the result sink.
type SinkConfig struct {
	Kind  SinkKind     `yaml:"kind"`
	Kafka *KafkaConfig `yaml:"kafka"`
}

// KafkaConfig holds the Kafka sink settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the configuration used when no file is supplied: two
// simulated channels at 1 kHz through a detrend/notch/bandpass chain,
// 200 ms windows every 100 ms, results to the log.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			MetricsAddr: ":9090",
			LogLevel:    LogInfo,
		},
		Source: SourceConfig{
			Channels:   2,
			SampleRate: 1000,
			Seed:       1,
			NoiseStd:   0.05,
		},
		Buffer: BufferConfig{CapacityS: 4},
		Pipeline: []pipeline.OpSpec{
			{Name: "detrend", Params: map[string]any{}},
			{Name: "notch", Params: map[string]any{"freq": 50.0, "q": 30.0}},
			{Name: "bandpass", Params: map[string]any{"low": 20.0, "high": 450.0, "order": 4}},
		},
		Features:  FeatureConfig{WaveletLevel: 3},
		Scheduler: SchedulerConfig{WindowS: 0.2, StepS: 0.1},
		Predictor: PredictorConfig{RMSThreshold: 0.5},
		Sink:      SinkConfig{Kind: SinkLog},
	}
}
