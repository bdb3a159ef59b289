// Package config provides configuration loading and validation for the Parakeet STT service.
// It handles YAML-based configuration with struct validation covering the HTTP server,
// canonical audio format, media converter and pretrained model parameters.
package config
