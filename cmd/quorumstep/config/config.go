// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the quorumstep CLI configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level CLI configuration.
type Config struct {
	Arbiter  ArbiterConfig  `yaml:"arbiter"`
	Proposer ProposerConfig `yaml:"proposer"`
	Puzzle   PuzzleConfig   `yaml:"puzzle"`
	Logging  LoggingConfig  `yaml:"logging"`

	// MetricsAddr enables a Prometheus /metrics listener when set,
	// e.g. ":9190". Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ArbiterConfig holds the voting parameters.
type ArbiterConfig struct {
	// K is the required vote lead margin.
	K int `yaml:"k" validate:"gte=1"`

	// RoundBatchSize is how many proposals each round fans out.
	RoundBatchSize int `yaml:"round_batch_size" validate:"gte=1"`

	// MaxRounds is the per-step circuit breaker.
	MaxRounds int `yaml:"max_rounds" validate:"gte=1"`

	// FlagRationaleCeiling is the red-flag length bound in characters.
	FlagRationaleCeiling int `yaml:"flag_rationale_ceiling" validate:"gte=1"`
}

// ProposerConfig selects and tunes the proposal backend.
type ProposerConfig struct {
	// Backend is "openai" or "stub".
	Backend string `yaml:"backend" validate:"oneof=openai stub"`

	// Model is the chat model name for the openai backend.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `yaml:"base_url"`

	// Temperature controls sampling randomness for the openai backend.
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`

	// Timeout is the per-proposal deadline.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// StubAccuracy is the correct-move probability for the stub backend;
	// 1.0 makes it deterministic.
	StubAccuracy float64 `yaml:"stub_accuracy" validate:"gte=0,lte=1"`
}

// PuzzleConfig describes the task instance.
type PuzzleConfig struct {
	// Disks is the number of disks in the reference puzzle.
	Disks int `yaml:"disks" validate:"gte=1,lte=20"`

	// Pegs is the number of pegs; the stub backends require 3.
	Pegs int `yaml:"pegs" validate:"gte=3"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`

	// Dir enables file logging when set.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Arbiter: ArbiterConfig{
			K:                    3,
			RoundBatchSize:       5,
			MaxRounds:            50,
			FlagRationaleCeiling: 750,
		},
		Proposer: ProposerConfig{
			Backend:      "stub",
			Model:        "gpt-4o-mini",
			Temperature:  0.7,
			Timeout:      60 * time.Second,
			StubAccuracy: 1.0,
		},
		Puzzle: PuzzleConfig{
			Disks: 5,
			Pegs:  3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a yaml config file over the defaults and validates the
// result. An empty path returns the validated defaults.
//
// Inputs:
//   - path: Config file path, or "" for defaults.
//
// Outputs:
//   - Config: The merged, validated configuration.
//   - error: Read, parse, or validation failure.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and cross-field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Proposer.Backend == "stub" && c.Puzzle.Pegs != 3 {
		return fmt.Errorf("invalid config: stub backend requires 3 pegs, got %d", c.Puzzle.Pegs)
	}
	return nil
}
