package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skypro1111/parakeet-stt/internal/asr"
	"github.com/skypro1111/parakeet-stt/internal/config"
	"github.com/skypro1111/parakeet-stt/internal/convert"
	"github.com/skypro1111/parakeet-stt/internal/metrics"
	"github.com/skypro1111/parakeet-stt/internal/server"
	"github.com/skypro1111/parakeet-stt/internal/transcribe"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "parakeet-stt"
	serviceVersion    = "1.0.0"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	serve := flag.Bool("serve", false, "Run the HTTP transcription server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	converter := convert.NewConverter(convert.Config{
		Binary:     cfg.Converter.Binary,
		Timeout:    cfg.Converter.GetTimeoutDuration(),
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}, logger)

	engine := asr.NewNemoEngine(asr.NemoConfig{
		ModelName: cfg.Model.Name,
		Device:    cfg.Model.Device,
		Python:    cfg.Model.Python,
		CacheDir:  cfg.Model.CacheDir,
		Timeout:   cfg.Model.GetTimeoutDuration(),
	}, logger)

	svc, err := transcribe.NewService(transcribe.Config{
		TempDir:         cfg.Audio.GetTempDir(),
		DefaultLanguage: cfg.Model.DefaultLanguage,
	}, logger, converter, engine, appMetrics)
	if err != nil {
		logger.Error("Failed to create transcription service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	switch {
	case flag.NArg() > 0:
		runFile(logger, svc, flag.Arg(0))
	case *serve:
		runServer(logger, cfg, svc, appMetrics)
	default:
		runWarmup(logger, svc)
	}
}

// runFile transcribes a local audio file and prints the transcript to stdout
func runFile(logger *slog.Logger, svc *transcribe.Service, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read audio file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	result, err := svc.Transcribe(context.Background(), payload, "")
	if err != nil {
		logger.Error("Transcription failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	fmt.Println(result.Text)
}

// runWarmup preloads the model and prints the warmup status
func runWarmup(logger *slog.Logger, svc *transcribe.Service) {
	logger.Info("No audio file provided, running warmup only")

	status, err := svc.Warmup(context.Background())
	if err != nil {
		logger.Error("Warmup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Warmup result: %s (%s)\n", status.Status, status.Model)
}

// runServer starts the HTTP API server and blocks until a shutdown signal
func runServer(logger *slog.Logger, cfg *config.Config, svc *transcribe.Service, m *metrics.Metrics) {
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		slog.String("model", cfg.Model.Name),
		slog.String("device", cfg.Model.Device),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
	)

	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, svc, m, prometheus.DefaultGatherer)

	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	stats := svc.Stats()
	logger.Info("Final service statistics",
		slog.Uint64("total_requests", stats.TotalRequests),
		slog.Uint64("success_requests", stats.SuccessRequests),
		slog.Uint64("failed_requests", stats.FailedRequests),
		slog.Uint64("empty_results", stats.EmptyResults),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
