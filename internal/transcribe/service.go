package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skypro1111/parakeet-stt/internal/asr"
	"github.com/skypro1111/parakeet-stt/internal/audio"
	"github.com/skypro1111/parakeet-stt/internal/convert"
	"github.com/skypro1111/parakeet-stt/internal/metrics"
)

// Result is the response record for a single transcription
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Stats represents aggregate orchestrator statistics
type Stats struct {
	TotalRequests     uint64        `json:"total_requests"`
	SuccessRequests   uint64        `json:"success_requests"`
	FailedRequests    uint64        `json:"failed_requests"`
	EmptyResults      uint64        `json:"empty_results"`
	SuccessRate       float64       `json:"success_rate"`
	AvgProcessingTime time.Duration `json:"avg_processing_time"`
}

// Config contains orchestrator configuration
type Config struct {
	TempDir         string // directory for per-request temp files, empty = system default
	DefaultLanguage string // language tag used when the caller supplies none
}

// Service orchestrates the transcription flow: persist incoming bytes, normalize
// them through the media converter, run a single model inference and shape the
// result. It is stateless per request; both temp files it creates are removed on
// every exit path. No retries are made at any step.
type Service struct {
	config    Config
	logger    *slog.Logger
	converter *convert.Converter
	engine    asr.Engine
	metrics   *metrics.Metrics

	// Aggregate statistics
	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	emptyResults    uint64
	avgProcessing   time.Duration

	mu sync.Mutex
}

// NewService creates a transcription orchestrator
func NewService(config Config, logger *slog.Logger, converter *convert.Converter,
	engine asr.Engine, m *metrics.Metrics) (*Service, error) {

	if converter == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}

	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	if m == nil {
		return nil, fmt.Errorf("metrics cannot be nil")
	}

	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}

	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	return &Service{
		config:    config,
		logger:    logger,
		converter: converter,
		engine:    engine,
		metrics:   m,
	}, nil
}

// Transcribe converts the audio payload to the canonical waveform format and
// returns the model's transcript. An empty payload or converter failure is
// surfaced before the model is ever invoked. A model that yields no transcript
// produces an empty text field, not an error.
func (s *Service) Transcribe(ctx context.Context, payload []byte, language string) (*Result, error) {
	if language == "" {
		language = s.config.DefaultLanguage
	}

	startTime := time.Now()
	requestID := uuid.NewString()
	s.metrics.RecordTranscriptionRequest(len(payload))

	s.logger.Debug("Transcription request received",
		slog.String("request_id", requestID),
		slog.Int("payload_bytes", len(payload)),
		slog.String("language", language),
	)

	if len(payload) == 0 {
		s.metrics.RecordConversion(false, 0)
		s.recordFailure(startTime)
		return nil, fmt.Errorf("persist audio payload: %w", convert.ErrEmptyPayload)
	}

	inputPath := filepath.Join(s.config.TempDir, requestID+".input")
	wavPath := filepath.Join(s.config.TempDir, requestID+".wav")
	defer s.removeTempFiles(requestID, inputPath, wavPath)

	if err := os.WriteFile(inputPath, payload, 0600); err != nil {
		s.recordFailure(startTime)
		return nil, fmt.Errorf("persist audio payload: %w", err)
	}

	conversionStart := time.Now()
	if err := s.converter.Run(ctx, inputPath, wavPath); err != nil {
		s.metrics.RecordConversion(false, time.Since(conversionStart).Seconds())
		s.recordFailure(startTime)
		return nil, fmt.Errorf("convert audio: %w", err)
	}
	s.metrics.RecordConversion(true, time.Since(conversionStart).Seconds())

	s.probeClip(requestID, wavPath)

	text, err := s.engine.Transcribe(ctx, wavPath)
	if err != nil {
		s.recordFailure(startTime)
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	elapsed := time.Since(startTime)
	s.metrics.RecordTranscriptionSuccess(elapsed.Seconds(), text == "")
	s.recordSuccess(elapsed, text == "")

	s.logger.Info("Transcription completed",
		slog.String("request_id", requestID),
		slog.String("language", language),
		slog.Int("transcript_length", len(text)),
		slog.Duration("elapsed", elapsed),
	)

	return &Result{Text: text, Language: language}, nil
}

// Warmup forces the model into accelerator memory without processing audio.
// Idempotent; repeated calls only affect latency, never transcription results.
func (s *Service) Warmup(ctx context.Context) (asr.WarmupStatus, error) {
	startTime := time.Now()

	status, err := s.engine.Warmup(ctx)
	if err != nil {
		return asr.WarmupStatus{}, fmt.Errorf("warmup model: %w", err)
	}

	s.metrics.RecordWarmup(time.Since(startTime).Seconds())

	return status, nil
}

// Stats returns aggregate orchestrator statistics
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	successRate := float64(0)
	if s.totalRequests > 0 {
		successRate = float64(s.successRequests) / float64(s.totalRequests) * 100
	}

	return Stats{
		TotalRequests:     s.totalRequests,
		SuccessRequests:   s.successRequests,
		FailedRequests:    s.failedRequests,
		EmptyResults:      s.emptyResults,
		SuccessRate:       successRate,
		AvgProcessingTime: s.avgProcessing,
	}
}

// probeClip inspects the normalized WAV header for logging and metrics.
// Best-effort: a probe failure never fails the request.
func (s *Service) probeClip(requestID, wavPath string) {
	file, err := os.Open(wavPath)
	if err != nil {
		return
	}
	defer file.Close()

	header := make([]byte, 44)
	if _, err := io.ReadFull(file, header); err != nil {
		return
	}

	info, err := audio.Probe(header)
	if err != nil {
		s.logger.Debug("Failed to probe normalized clip",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.metrics.RecordClipDuration(info.Duration)

	s.logger.Debug("Audio normalized to canonical format",
		slog.String("request_id", requestID),
		slog.Uint64("sample_rate", uint64(info.SampleRate)),
		slog.Float64("clip_duration", info.Duration),
	)
}

// removeTempFiles deletes per-request temp files, tolerating ones never created
func (s *Service) removeTempFiles(requestID string, paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to remove temp file",
				slog.String("request_id", requestID),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Service) recordSuccess(elapsed time.Duration, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.successRequests++
	if empty {
		s.emptyResults++
	}

	// Simple moving average
	if s.avgProcessing == 0 {
		s.avgProcessing = elapsed
	} else {
		s.avgProcessing = (s.avgProcessing + elapsed) / 2
	}
}

func (s *Service) recordFailure(startTime time.Time) {
	s.metrics.RecordTranscriptionFailure(time.Since(startTime).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.failedRequests++
}
