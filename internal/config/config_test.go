package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "0.0.0.0",
			Enabled: true,
		},
		Audio: AudioConfig{
			SampleRate:      16000,
			Channels:        1,
			BitDepth:        16,
			MaxPayloadBytes: 25 << 20,
		},
		Converter: ConverterConfig{
			Binary:  "ffmpeg",
			Timeout: 60,
		},
		Model: ModelConfig{
			Name:            "nvidia/parakeet-tdt-0.6b-v2",
			Device:          "auto",
			Python:          "python3",
			CacheDir:        "/model-cache",
			Timeout:         120,
			DefaultLanguage: "en",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid http port",
			mutate:      func(c *Config) { c.HTTP.Port = 70000 },
			expectError: true,
			errorMsg:    "port must be between 1 and 65535",
		},
		{
			name:        "http disabled skips port check",
			mutate:      func(c *Config) { c.HTTP.Enabled = false; c.HTTP.Port = 0 },
			expectError: false,
		},
		{
			name:        "invalid sample rate",
			mutate:      func(c *Config) { c.Audio.SampleRate = 8000 },
			expectError: true,
			errorMsg:    "sample_rate must be 16000 Hz",
		},
		{
			name:        "invalid channel count",
			mutate:      func(c *Config) { c.Audio.Channels = 2 },
			expectError: true,
			errorMsg:    "channels must be 1",
		},
		{
			name:        "invalid bit depth",
			mutate:      func(c *Config) { c.Audio.BitDepth = 24 },
			expectError: true,
			errorMsg:    "bit_depth must be 16",
		},
		{
			name:        "payload limit too small",
			mutate:      func(c *Config) { c.Audio.MaxPayloadBytes = 512 },
			expectError: true,
			errorMsg:    "max_payload_bytes must be at least 1024",
		},
		{
			name:        "empty converter binary",
			mutate:      func(c *Config) { c.Converter.Binary = "" },
			expectError: true,
			errorMsg:    "binary cannot be empty",
		},
		{
			name:        "converter timeout too small",
			mutate:      func(c *Config) { c.Converter.Timeout = 0 },
			expectError: true,
			errorMsg:    "timeout must be at least 1 second",
		},
		{
			name:        "empty model name",
			mutate:      func(c *Config) { c.Model.Name = "" },
			expectError: true,
			errorMsg:    "name cannot be empty",
		},
		{
			name:        "invalid model device",
			mutate:      func(c *Config) { c.Model.Device = "tpu" },
			expectError: true,
			errorMsg:    "device must be one of [auto, cpu, cuda]",
		},
		{
			name:        "empty default language",
			mutate:      func(c *Config) { c.Model.DefaultLanguage = "" },
			expectError: true,
			errorMsg:    "default_language cannot be empty",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be 'json' or 'text'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected validation error containing %q, got nil", tt.errorMsg)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no validation error, got: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
http:
  enabled: true
  address: "127.0.0.1"
  port: 9090

audio:
  sample_rate: 16000
  channels: 1
  bit_depth: 16
  max_payload_bytes: 1048576
  temp_dir: "/tmp/stt"

converter:
  binary: "ffmpeg"
  timeout: 30

model:
  name: "nvidia/parakeet-tdt-0.6b-v2"
  device: "cuda"
  python: "python3"
  cache_dir: "/model-cache"
  timeout: 120
  default_language: "en"

logging:
  level: "debug"
  format: "text"
  output: "stderr"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("Expected http port 9090, got %d", cfg.HTTP.Port)
	}

	if cfg.Audio.GetTempDir() != "/tmp/stt" {
		t.Errorf("Expected temp dir /tmp/stt, got %s", cfg.Audio.GetTempDir())
	}

	if cfg.Converter.GetTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected converter timeout 30s, got %v", cfg.Converter.GetTimeoutDuration())
	}

	if cfg.Model.GetTimeoutDuration() != 120*time.Second {
		t.Errorf("Expected model timeout 120s, got %v", cfg.Model.GetTimeoutDuration())
	}

	if cfg.Model.Device != "cuda" {
		t.Errorf("Expected device cuda, got %s", cfg.Model.Device)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestGetTempDirDefault(t *testing.T) {
	a := AudioConfig{}
	if a.GetTempDir() != os.TempDir() {
		t.Errorf("Expected system temp dir %s, got %s", os.TempDir(), a.GetTempDir())
	}
}
