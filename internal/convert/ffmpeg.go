package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyPayload indicates an audio payload with no data. It is classified as
// a conversion failure: the converter is never spawned and the model is never invoked.
var ErrEmptyPayload = errors.New("audio payload is empty")

// Error describes a failed conversion attempt, carrying the converter's stderr output
type Error struct {
	Binary string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Binary, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Binary, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config contains media converter configuration
type Config struct {
	Binary     string        // converter executable, e.g. "ffmpeg"
	Timeout    time.Duration // wall-clock limit per conversion
	SampleRate int           // target sample rate in Hz
	Channels   int           // target channel count
}

// Converter normalizes arbitrary audio files to the canonical waveform format
// by invoking an external command-line media converter. A single attempt is
// made per call; there are no retries.
type Converter struct {
	config Config
	logger *slog.Logger
}

// NewConverter creates a converter with defaults applied for unset fields
func NewConverter(config Config, logger *slog.Logger) *Converter {
	if config.Binary == "" {
		config.Binary = "ffmpeg"
	}

	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	if config.SampleRate <= 0 {
		config.SampleRate = 16000
	}

	if config.Channels <= 0 {
		config.Channels = 1
	}

	return &Converter{
		config: config,
		logger: logger,
	}
}

// Args builds the converter command-line arguments for a src -> dst conversion
func (c *Converter) Args(src, dst string) []string {
	return []string{
		"-i", src,
		"-ar", strconv.Itoa(c.config.SampleRate),
		"-ac", strconv.Itoa(c.config.Channels),
		"-y", // overwrite dst if present
		dst,
	}
}

// Run converts src to the canonical waveform format at dst. A non-zero exit
// is surfaced as *Error with the process stderr attached.
func (c *Converter) Run(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.config.Binary, c.Args(src, dst)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	startTime := time.Now()
	if err := cmd.Run(); err != nil {
		return &Error{
			Binary: c.config.Binary,
			Stderr: stderrTail(stderr.String()),
			Err:    err,
		}
	}

	c.logger.Debug("Audio normalized",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}

// stderrTail keeps the last few lines of converter output, which is where
// ffmpeg reports the actual failure reason.
func stderrTail(s string) string {
	const maxLines = 5

	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return strings.Join(lines, "\n")
}
