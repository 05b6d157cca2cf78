// Command biosigd runs the streaming biosignal loop: a simulated
// acquisition source feeding a ring buffer, a preprocessing pipeline,
// windowed feature extraction, threshold inference, and a result sink,
// paced by the realtime scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-biosig/acquire"
	"github.com/cwbudde/algo-biosig/feature"
	"github.com/cwbudde/algo-biosig/internal/config"
	"github.com/cwbudde/algo-biosig/internal/observe"
	"github.com/cwbudde/algo-biosig/pipeline"
	"github.com/cwbudde/algo-biosig/realtime"
	"github.com/cwbudde/algo-biosig/sink"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (empty for built-in defaults)")
	flag.Parse()

	// A .env alongside the binary may carry broker addresses and the
	// like; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "biosigd: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Server)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "biosigd"})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown failed", "error", err)
		}
	}()

	if err := serve(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("biosigd exited with error", "error", err)
		return 1
	}

	slog.Info("biosigd stopped")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(server config.ServerConfig) *slog.Logger {
	level := slog.LevelInfo
	switch server.LogLevel {
	case config.LogDebug:
		level = slog.LevelDebug
	case config.LogWarn:
		level = slog.LevelWarn
	case config.LogError:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if server.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// serve assembles the loop from the configuration and runs producer,
// consumer, and metrics endpoint until the context is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	source, err := buildSource(cfg.Source)
	if err != nil {
		return err
	}

	buffer, err := realtime.NewRingBuffer(cfg.Source.Channels, int(cfg.Buffer.CapacityS*cfg.Source.SampleRate))
	if err != nil {
		return err
	}

	pipe, err := pipeline.Build(cfg.Source.SampleRate, cfg.Pipeline)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	extractor, err := feature.NewExtractor(pipe.OutputRate(), feature.WithWaveletLevel(cfg.Features.WaveletLevel))
	if err != nil {
		return err
	}

	resultSink, closeSink, err := buildSink(cfg.Sink, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider(), func() int64 { return int64(buffer.Size()) })
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	scheduler, err := realtime.NewScheduler(realtime.SchedulerConfig{
		Buffer:    buffer,
		Pipeline:  pipe,
		Extractor: extractor,
		Predictor: realtime.NewThresholdPredictor(cfg.Predictor.RMSThreshold),
		Sink:      resultSink,
		WindowS:   cfg.Scheduler.WindowS,
		StepS:     cfg.Scheduler.StepS,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	slog.Info("biosigd starting",
		"session_id", scheduler.SessionID(),
		"channels", cfg.Source.Channels,
		"sample_rate", cfg.Source.SampleRate,
		"window_s", cfg.Scheduler.WindowS,
		"step_s", cfg.Scheduler.StepS,
		"sink", cfg.Sink.Kind)

	g, gctx := errgroup.WithContext(ctx)

	pump := acquire.NewPump(source, buffer, 0, logger)
	g.Go(func() error { return pump.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })

	if cfg.Server.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.Server.MetricsAddr) })
	}

	return g.Wait()
}

func buildSource(cfg config.SourceConfig) (acquire.Source, error) {
	opts := []acquire.SimOption{
		acquire.WithEpoch(float64(time.Now().UnixNano()) / 1e9),
	}
	if cfg.NoiseStd > 0 {
		opts = append(opts, acquire.WithNoise(cfg.NoiseStd))
	}
	if b := cfg.Bursts; b != nil {
		opts = append(opts, acquire.WithEMGBursts(b.PerSecond, b.DurationS, b.Gain))
	}
	return acquire.NewSimulatedSource(cfg.Channels, cfg.SampleRate, cfg.Seed, opts...)
}

func buildSink(cfg config.SinkConfig, logger *slog.Logger) (realtime.ResultSink, func(), error) {
	switch cfg.Kind {
	case config.SinkKafka:
		brokers := cfg.Kafka.Brokers
		if env := os.Getenv("KAFKA_BROKERS"); env != "" {
			brokers = []string{env}
		}
		k, err := sink.NewKafkaSink(sink.KafkaConfig{
			Brokers: brokers,
			Topic:   cfg.Kafka.Topic,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return k, func() {
			if err := k.Close(); err != nil {
				slog.Warn("closing kafka sink failed", "error", err)
			}
		}, nil
	default:
		return sink.NewLogSink(logger), func() {}, nil
	}
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
