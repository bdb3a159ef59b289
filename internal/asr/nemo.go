package asr

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:embed assets/parakeet_infer.py
var inferScript []byte

// DefaultModelName is the pretrained checkpoint used when none is configured
const DefaultModelName = "nvidia/parakeet-tdt-0.6b-v2"

// NemoConfig contains NeMo engine configuration
type NemoConfig struct {
	ModelName string        // pretrained checkpoint name
	Device    string        // auto, cpu or cuda
	Python    string        // python interpreter running the helper
	CacheDir  string        // model weight cache directory, exported as HF_HOME
	Timeout   time.Duration // wall-clock limit per helper invocation
}

// NemoEngine runs the pretrained NVIDIA Parakeet model through an embedded
// Python helper. Each call is an independent helper invocation; model residency
// across calls is provided by the platform's weight cache, not by this process.
type NemoEngine struct {
	config NemoConfig
	logger *slog.Logger
}

// inferOutput is the JSON object the helper prints on stdout
type inferOutput struct {
	Text   string `json:"text"`
	Status string `json:"status"`
	Model  string `json:"model"`
}

// NewNemoEngine creates an engine with defaults applied for unset fields
func NewNemoEngine(config NemoConfig, logger *slog.Logger) *NemoEngine {
	if config.ModelName == "" {
		config.ModelName = DefaultModelName
	}

	if config.Device == "" {
		config.Device = "auto"
	}

	if config.Python == "" {
		config.Python = "python3"
	}

	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	return &NemoEngine{
		config: config,
		logger: logger,
	}
}

// Transcribe runs a single inference attempt on the audio file at wavPath.
// A model that yields no transcript produces an empty string, not an error.
func (e *NemoEngine) Transcribe(ctx context.Context, wavPath string) (string, error) {
	output, err := e.run(ctx, "--audio", wavPath)
	if err != nil {
		return "", fmt.Errorf("model inference failed: %w", err)
	}

	return output.Text, nil
}

// Warmup loads the model into accelerator memory without processing audio.
// Safe to call repeatedly.
func (e *NemoEngine) Warmup(ctx context.Context) (WarmupStatus, error) {
	startTime := time.Now()

	output, err := e.run(ctx, "--warmup")
	if err != nil {
		return WarmupStatus{}, fmt.Errorf("model warmup failed: %w", err)
	}

	status := output.Status
	if status == "" {
		status = "warm"
	}

	e.logger.Info("Model warmed",
		slog.String("model", output.Model),
		slog.Duration("elapsed", time.Since(startTime)),
	)

	return WarmupStatus{Status: status, Model: output.Model}, nil
}

// run writes the embedded helper to a uniquely named temp file, executes it
// with the given arguments and parses its stdout.
func (e *NemoEngine) run(ctx context.Context, args ...string) (*inferOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	scriptPath := filepath.Join(os.TempDir(), fmt.Sprintf("parakeet_infer_%s.py", uuid.NewString()))
	if err := os.WriteFile(scriptPath, inferScript, 0600); err != nil {
		return nil, fmt.Errorf("failed to write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	cmdArgs := append([]string{
		scriptPath,
		"--model", e.config.ModelName,
		"--device", e.config.Device,
	}, args...)

	cmd := exec.CommandContext(ctx, e.config.Python, cmdArgs...)
	cmd.Env = os.Environ()
	if e.config.CacheDir != "" {
		cmd.Env = append(cmd.Env, "HF_HOME="+e.config.CacheDir)
	}

	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("helper exited with %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to run helper: %w", err)
	}

	return parseInferOutput(stdout)
}

// parseInferOutput decodes the helper's JSON stdout
func parseInferOutput(data []byte) (*inferOutput, error) {
	var output inferOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse helper output: %w: %s", err, strings.TrimSpace(string(data)))
	}

	return &output, nil
}
