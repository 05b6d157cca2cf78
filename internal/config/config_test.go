package config

import (
	"strings"
	"testing"
)

func TestLoadFromReaderOverridesDefaults(t *testing.T) {
	doc := `
source:
  channels: 4
  sample_rate: 2000
  seed: 99
scheduler:
  window_s: 0.5
  step_s: 0.25
pipeline:
  - op: notch
    freq: 60
    q: 35
sink:
  kind: kafka
  kafka:
    brokers: [localhost:9092]
    topic: biosig.results
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Source.Channels != 4 || cfg.Source.SampleRate != 2000 || cfg.Source.Seed != 99 {
		t.Errorf("source not overridden: %+v", cfg.Source)
	}
	if cfg.Scheduler.WindowS != 0.5 || cfg.Scheduler.StepS != 0.25 {
		t.Errorf("scheduler not overridden: %+v", cfg.Scheduler)
	}
	if len(cfg.Pipeline) != 1 || cfg.Pipeline[0].Name != "notch" {
		t.Errorf("pipeline not overridden: %+v", cfg.Pipeline)
	}
	if cfg.Sink.Kind != SinkKafka || cfg.Sink.Kafka.Topic != "biosig.results" {
		t.Errorf("sink not overridden: %+v", cfg.Sink)
	}

	// Untouched sections keep their defaults.
	if cfg.Buffer.CapacityS != 4 {
		t.Errorf("buffer default lost: %+v", cfg.Buffer)
	}
	if cfg.Features.WaveletLevel != 3 {
		t.Errorf("feature default lost: %+v", cfg.Features)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("sched: {}\n")); err == nil {
		t.Error("unknown top-level field accepted")
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	cfg := Default()
	cfg.Source.Channels = 0
	cfg.Scheduler.StepS = 0
	cfg.Sink.Kind = "mqtt"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	msg := err.Error()
	for _, want := range []string{"source.channels", "scheduler.step_s", "sink.kind"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error does not mention %s: %v", want, msg)
		}
	}
}

func TestValidateKafkaSinkNeedsBrokers(t *testing.T) {
	cfg := Default()
	cfg.Sink.Kind = SinkKafka
	if err := Validate(cfg); err == nil {
		t.Error("kafka sink without brokers accepted")
	}
}

func TestValidateWindowMustFitBuffer(t *testing.T) {
	cfg := Default()
	cfg.Scheduler.WindowS = 10
	cfg.Buffer.CapacityS = 2
	if err := Validate(cfg); err == nil {
		t.Error("window larger than buffer accepted")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
