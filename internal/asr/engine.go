package asr

import "context"

// WarmupStatus reports the outcome of a model preload
type WarmupStatus struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// Engine produces transcripts from canonical 16 kHz mono WAV files.
// Implementations make a single inference attempt per call; a model that
// yields no transcript returns an empty string, not an error.
type Engine interface {
	// Transcribe runs inference on the audio file at wavPath and returns the transcript.
	Transcribe(ctx context.Context, wavPath string) (string, error)

	// Warmup forces the model into accelerator memory. Idempotent.
	Warmup(ctx context.Context) (WarmupStatus, error)
}
