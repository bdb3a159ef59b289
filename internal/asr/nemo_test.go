package asr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeFakeInterpreter creates an executable shell script standing in for python3.
// It receives the helper script path plus flags and ignores them.
func writeFakeInterpreter(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-python")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake interpreter: %v", err)
	}

	return path
}

func TestNewNemoEngineDefaults(t *testing.T) {
	e := NewNemoEngine(NemoConfig{}, testLogger())

	if e.config.ModelName != DefaultModelName {
		t.Errorf("Expected default model %s, got %s", DefaultModelName, e.config.ModelName)
	}

	if e.config.Device != "auto" {
		t.Errorf("Expected default device auto, got %s", e.config.Device)
	}

	if e.config.Python != "python3" {
		t.Errorf("Expected default python3 interpreter, got %s", e.config.Python)
	}

	if e.config.Timeout != 120*time.Second {
		t.Errorf("Expected default timeout 120s, got %v", e.config.Timeout)
	}
}

func TestParseInferOutput(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantText  string
		expectErr bool
	}{
		{
			name:     "transcript",
			data:     `{"text": "five", "model": "nvidia/parakeet-tdt-0.6b-v2"}`,
			wantText: "five",
		},
		{
			name:     "empty transcript",
			data:     `{"text": "", "model": "nvidia/parakeet-tdt-0.6b-v2"}`,
			wantText: "",
		},
		{
			name:     "warmup status",
			data:     `{"status": "warm", "model": "nvidia/parakeet-tdt-0.6b-v2"}`,
			wantText: "",
		},
		{
			name:      "invalid json",
			data:      "Traceback (most recent call last):",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := parseInferOutput([]byte(tt.data))
			if tt.expectErr {
				if err == nil {
					t.Fatal("Expected parse error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("parseInferOutput failed: %v", err)
			}

			if output.Text != tt.wantText {
				t.Errorf("Expected text %q, got %q", tt.wantText, output.Text)
			}
		})
	}
}

func TestTranscribe(t *testing.T) {
	python := writeFakeInterpreter(t, `printf '{"text": "hello world", "model": "test-model"}'`)

	e := NewNemoEngine(NemoConfig{Python: python}, testLogger())

	text, err := e.Transcribe(context.Background(), "/tmp/audio.wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "hello world" {
		t.Errorf("Expected transcript 'hello world', got %q", text)
	}
}

func TestTranscribeEmptyResult(t *testing.T) {
	python := writeFakeInterpreter(t, `printf '{"text": "", "model": "test-model"}'`)

	e := NewNemoEngine(NemoConfig{Python: python}, testLogger())

	text, err := e.Transcribe(context.Background(), "/tmp/silence.wav")
	if err != nil {
		t.Fatalf("Expected empty transcript to be a valid result, got error: %v", err)
	}

	if text != "" {
		t.Errorf("Expected empty transcript, got %q", text)
	}
}

func TestTranscribeHelperFailure(t *testing.T) {
	python := writeFakeInterpreter(t, `echo "CUDA out of memory" >&2
exit 3`)

	e := NewNemoEngine(NemoConfig{Python: python}, testLogger())

	_, err := e.Transcribe(context.Background(), "/tmp/audio.wav")
	if err == nil {
		t.Fatal("Expected error for failing helper, got nil")
	}

	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Errorf("Expected helper stderr in error, got %q", err.Error())
	}
}

func TestWarmup(t *testing.T) {
	python := writeFakeInterpreter(t, `printf '{"status": "warm", "model": "test-model"}'`)

	e := NewNemoEngine(NemoConfig{Python: python}, testLogger())

	// Repeated warmups are safe and return the same status.
	for i := 0; i < 2; i++ {
		status, err := e.Warmup(context.Background())
		if err != nil {
			t.Fatalf("Warmup %d failed: %v", i+1, err)
		}

		if status.Status != "warm" {
			t.Errorf("Expected status warm, got %q", status.Status)
		}

		if status.Model != "test-model" {
			t.Errorf("Expected model test-model, got %q", status.Model)
		}
	}
}
