package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the Parakeet STT service
type Metrics struct {
	// Conversion metrics
	ConversionsTotal   prometheus.Counter
	ConversionFailures prometheus.Counter
	ConversionDuration prometheus.Histogram

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionEmpty     prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// Audio payload metrics
	PayloadSize  prometheus.Histogram
	ClipDuration prometheus.Histogram

	// Warmup metrics
	WarmupsTotal   prometheus.Counter
	WarmupDuration prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics with the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Conversion metrics
		ConversionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_conversions_total",
			Help: "Total number of media conversion attempts",
		}),
		ConversionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_conversion_failures_total",
			Help: "Total number of failed media conversions",
		}),
		ConversionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_conversion_duration_seconds",
			Help:    "Duration of media conversions",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),

		// Transcription metrics
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_transcription_requests_total",
			Help: "Total number of transcription requests received",
		}),
		TranscriptionSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_transcription_successes_total",
			Help: "Total number of successful transcriptions",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_transcription_failures_total",
			Help: "Total number of failed transcriptions",
		}),
		TranscriptionEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_transcription_empty_total",
			Help: "Total number of transcriptions that yielded an empty transcript",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_transcription_duration_seconds",
			Help:    "End-to-end duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		// Audio payload metrics
		PayloadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_audio_payload_bytes",
			Help:    "Size of incoming audio payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to ~16MB
		}),
		ClipDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_audio_clip_duration_seconds",
			Help:    "Duration of normalized audio clips",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8 minutes
		}),

		// Warmup metrics
		WarmupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_warmups_total",
			Help: "Total number of model warmup invocations",
		}),
		WarmupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_warmup_duration_seconds",
			Help:    "Duration of model warmup invocations",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8 minutes
		}),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stt_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stt_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stt_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordConversion records a conversion attempt and its outcome
func (m *Metrics) RecordConversion(success bool, durationSeconds float64) {
	m.ConversionsTotal.Inc()
	m.ConversionDuration.Observe(durationSeconds)
	if !success {
		m.ConversionFailures.Inc()
	}
}

// RecordTranscriptionRequest records an incoming transcription request
func (m *Metrics) RecordTranscriptionRequest(payloadBytes int) {
	m.TranscriptionRequests.Inc()
	m.PayloadSize.Observe(float64(payloadBytes))
}

// RecordTranscriptionSuccess records a completed transcription
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64, emptyTranscript bool) {
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
	if emptyTranscript {
		m.TranscriptionEmpty.Inc()
	}
}

// RecordTranscriptionFailure records a failed transcription
func (m *Metrics) RecordTranscriptionFailure(durationSeconds float64) {
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordClipDuration records the duration of a normalized audio clip
func (m *Metrics) RecordClipDuration(durationSeconds float64) {
	m.ClipDuration.Observe(durationSeconds)
}

// RecordWarmup records a model warmup invocation
func (m *Metrics) RecordWarmup(durationSeconds float64) {
	m.WarmupsTotal.Inc()
	m.WarmupDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
