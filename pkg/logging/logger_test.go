// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{" Error ", LevelError},
		{"", LevelInfo},
		{"nonsense", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelDebug,
		Service: "testsvc",
		Quiet:   true,
		LogDir:  dir,
	})
	logger.Info("hello", "run_id", "run-abc")
	logger.Debug("fine detail")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log file has %d lines, want 2", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["service"] != "testsvc" {
		t.Errorf("service = %v, want testsvc", entry["service"])
	}
	if entry["run_id"] != "run-abc" {
		t.Errorf("run_id = %v, want run-abc", entry["run_id"])
	}
}

func TestNew_LevelFiltersFile(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:  LevelWarn,
		Quiet:  true,
		LogDir: dir,
	})
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Close()

	name := "quorumstep_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("info entry survived a warn-level logger")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry missing")
	}
}

func TestNew_QuietWithoutFile(t *testing.T) {
	// No destinations at all must still yield a usable logger.
	logger := New(Config{Quiet: true})
	logger.Info("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default returned nil")
	}
	if logger.file != nil {
		t.Error("default logger should not open a file")
	}
}
