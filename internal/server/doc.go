// Package server implements the HTTP adapter over the transcription orchestrator.
// POST /transcribe accepts raw audio bytes and returns the {text, language} record;
// the remaining endpoints provide warmup, health, configuration, statistics and
// Prometheus metrics.
package server
