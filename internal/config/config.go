// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the YAML configuration file that parameterizes
// an orchestration run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file Load looks for when no path is given.
const DefaultFileName = ".hypobench.yaml"

// Config groups every tunable of an orchestration run.
type Config struct {
	Hypothesis    HypothesisConfig    `yaml:"hypothesis"`
	Orchestration OrchestrationConfig `yaml:"orchestration"`
	Build         BuildConfig         `yaml:"build"`
	Network       NetworkConfig       `yaml:"network"`
}

// HypothesisConfig parameterizes the statistical engine.
type HypothesisConfig struct {
	ConfidenceLevel   float64 `yaml:"confidence_level"`
	MinimumEffectSize float64 `yaml:"minimum_effect_size"`
}

// OrchestrationConfig parameterizes the warmup/sample protocol.
type OrchestrationConfig struct {
	InterleaveIntervalMs int `yaml:"interleave_interval_ms"`
	WarmupIterations     int `yaml:"warmup_iterations"`
	SampleSize           int `yaml:"sample_size"`
}

// BuildConfig parameterizes the build collaborator (automatic mode only).
type BuildConfig struct {
	Profile      string   `yaml:"profile"`
	BuildFlags   []string `yaml:"build_flags"`
	BenchTargets []string `yaml:"bench_targets"`
}

// NetworkConfig parameterizes harness spawning and health polling.
type NetworkConfig struct {
	BasePort         int `yaml:"base_port"`
	HarnessTimeoutMs int `yaml:"harness_timeout_ms"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Hypothesis: HypothesisConfig{
			ConfidenceLevel:   0.95,
			MinimumEffectSize: 1.0,
		},
		Orchestration: OrchestrationConfig{
			InterleaveIntervalMs: 100,
			WarmupIterations:     3,
			SampleSize:           100,
		},
		Build: BuildConfig{
			Profile:      "release",
			BuildFlags:   []string{},
			BenchTargets: []string{},
		},
		Network: NetworkConfig{
			BasePort:         9100,
			HarnessTimeoutMs: 30000,
		},
	}
}

// Load reads a YAML config file and overlays it onto the defaults. If
// path is empty, DefaultFileName is used. A missing file is not an
// error: Load returns the defaults unmodified.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load("").
func LoadOrDefault() (*Config, error) {
	return Load("")
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
