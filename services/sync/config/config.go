// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the canvas-sync YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// File is the canvas-sync.yaml schema.
type File struct {
	// Root is the component directory to watch.
	Root string `yaml:"root"`

	// Ignore lists names/globs skipped by the watcher.
	Ignore []string `yaml:"ignore"`

	Tracker TrackerSection `yaml:"tracker"`
	Server  ServerSection  `yaml:"server"`
	Log     LogSection     `yaml:"log"`
}

// TrackerSection configures the change tracker.
type TrackerSection struct {
	// PauseDurationMS is the settle delay in milliseconds.
	PauseDurationMS int `yaml:"pause_duration_ms" validate:"gte=0"`

	// AutoResumeTimeoutMS is the safety-net duration in milliseconds.
	AutoResumeTimeoutMS int `yaml:"auto_resume_timeout_ms" validate:"gte=0"`

	// Debug enables per-decision logging.
	Debug bool `yaml:"debug"`
}

// ServerSection configures the status API.
type ServerSection struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"gte=0,lte=65535"`
}

// LogSection configures logging.
type LogSection struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration: tracker defaults, status
// API on :8235, info-level logs.
func Default() File {
	return File{
		Tracker: TrackerSection{
			PauseDurationMS:     100,
			AutoResumeTimeoutMS: 5000,
		},
		Server: ServerSection{
			Enabled: true,
			Port:    8235,
		},
		Log: LogSection{
			Level: "info",
		},
	}
}

// Load reads and validates a configuration file. Missing fields fall back
// to Default values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (f *File) Validate() error {
	return validate.Struct(f)
}

// ApplyDefaults fills in zero values with Default values. Explicit zeros
// for the durations are preserved as "use tracker defaults".
func (f *File) ApplyDefaults() {
	defaults := Default()
	if f.Server.Port == 0 {
		f.Server.Port = defaults.Server.Port
	}
	if f.Log.Level == "" {
		f.Log.Level = defaults.Log.Level
	}
}

// TrackerConfig converts the section to a tracker.Config.
func (f *File) TrackerConfig() tracker.Config {
	return tracker.Config{
		PauseDuration:     time.Duration(f.Tracker.PauseDurationMS) * time.Millisecond,
		AutoResumeTimeout: time.Duration(f.Tracker.AutoResumeTimeoutMS) * time.Millisecond,
		Debug:             f.Tracker.Debug,
	}
}
