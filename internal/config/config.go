package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Audio     AudioConfig     `yaml:"audio"`
	Converter ConverterConfig `yaml:"converter"`
	Model     ModelConfig     `yaml:"model"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// AudioConfig contains the canonical audio format parameters the model expects
type AudioConfig struct {
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
	BitDepth        int    `yaml:"bit_depth"`
	MaxPayloadBytes int64  `yaml:"max_payload_bytes"`
	TempDir         string `yaml:"temp_dir"` // empty = system temp directory
}

// ConverterConfig contains external media converter configuration
type ConverterConfig struct {
	Binary  string `yaml:"binary"`
	Timeout int    `yaml:"timeout"` // seconds
}

// ModelConfig contains pretrained ASR model configuration
type ModelConfig struct {
	Name            string `yaml:"name"`
	Device          string `yaml:"device"` // auto, cpu or cuda
	Python          string `yaml:"python"`
	CacheDir        string `yaml:"cache_dir"`
	Timeout         int    `yaml:"timeout"` // seconds
	DefaultLanguage string `yaml:"default_language"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Converter.Validate(); err != nil {
		return fmt.Errorf("converter config: %w", err)
	}

	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate != 16000 {
		return fmt.Errorf("sample_rate must be 16000 Hz for Parakeet, got %d", a.SampleRate)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono) for Parakeet, got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16 for Parakeet, got %d", a.BitDepth)
	}

	if a.MaxPayloadBytes < 1024 {
		return fmt.Errorf("max_payload_bytes must be at least 1024, got %d", a.MaxPayloadBytes)
	}

	return nil
}

// Validate validates converter configuration
func (cv *ConverterConfig) Validate() error {
	if cv.Binary == "" {
		return fmt.Errorf("binary cannot be empty")
	}

	if cv.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", cv.Timeout)
	}

	return nil
}

// Validate validates model configuration
func (m *ModelConfig) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	validDevices := map[string]bool{"auto": true, "cpu": true, "cuda": true}
	if !validDevices[m.Device] {
		return fmt.Errorf("device must be one of [auto, cpu, cuda], got '%s'", m.Device)
	}

	if m.Python == "" {
		return fmt.Errorf("python cannot be empty")
	}

	if m.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", m.Timeout)
	}

	if m.DefaultLanguage == "" {
		return fmt.Errorf("default_language cannot be empty")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the converter timeout as a time.Duration
func (cv *ConverterConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(cv.Timeout) * time.Second
}

// GetTimeoutDuration returns the model timeout as a time.Duration
func (m *ModelConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

// GetTempDir returns the configured temp directory, falling back to the system default
func (a *AudioConfig) GetTempDir() string {
	if a.TempDir == "" {
		return os.TempDir()
	}
	return a.TempDir
}
