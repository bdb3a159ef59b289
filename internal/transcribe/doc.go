// Package transcribe implements the transcription orchestrator: it persists
// incoming audio bytes, delegates normalization to the media converter and
// inference to the pretrained model, and shapes the {text, language} result.
// Temporary on-disk artifacts are scoped to a single request and removed on
// every exit path.
package transcribe
