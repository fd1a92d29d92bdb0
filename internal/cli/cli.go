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

// Package cli parses the hypobench command line and overlays explicit
// flags onto a loaded configuration.
package cli

import (
	"flag"
	"fmt"

	"github.com/ealvarez/hypobench/internal/config"
)

// Args holds the parsed command line. Optional numeric overrides use
// pointer fields so ApplyToConfig can tell "not set" apart from "set to
// zero".
type Args struct {
	Baseline  string
	Candidate string

	BaselineURL  string
	CandidateURL string

	HarnessOutput bool
	Verbose       bool

	ConfigPath  string
	MetricsAddr string

	ConfidenceLevel  *float64
	SampleSize       *int
	WarmupIterations *int

	Bench []string
}

type benchFlags []string

func (b *benchFlags) String() string {
	return fmt.Sprint([]string(*b))
}

func (b *benchFlags) Set(value string) error {
	*b = append(*b, value)
	return nil
}

// Parse parses args (typically os.Args[1:]) into an Args value.
func Parse(fs *flag.FlagSet, args []string) (*Args, error) {
	a := &Args{}

	fs.StringVar(&a.Baseline, "baseline", "", "Baseline commit/branch to compare against (automatic mode)")
	fs.StringVar(&a.Candidate, "candidate", "", "Candidate commit/branch to test (automatic mode)")
	fs.StringVar(&a.BaselineURL, "baseline-url", "", "URL of an already-running baseline harness (manual mode)")
	fs.StringVar(&a.CandidateURL, "candidate-url", "", "URL of an already-running candidate harness (manual mode)")
	fs.BoolVar(&a.HarnessOutput, "harness-output", false, "Print harness stdout/stderr for debugging")
	fs.BoolVar(&a.Verbose, "verbose", false, "Verbose output")
	fs.StringVar(&a.ConfigPath, "config", config.DefaultFileName, "Path to config file")
	fs.StringVar(&a.MetricsAddr, "metrics-addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g., :9090)")

	var confidenceLevel float64
	var confidenceLevelSet bool
	fs.Func("confidence-level", "Confidence level for statistical tests (0.0-1.0)", func(v string) error {
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err != nil {
			return fmt.Errorf("invalid confidence-level %q: %w", v, err)
		}
		confidenceLevel = f
		confidenceLevelSet = true
		return nil
	})

	var sampleSize int
	var sampleSizeSet bool
	fs.Func("sample-size", "Number of sample iterations per benchmark", func(v string) error {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return fmt.Errorf("invalid sample-size %q: %w", v, err)
		}
		sampleSize = n
		sampleSizeSet = true
		return nil
	})

	var warmupIterations int
	var warmupIterationsSet bool
	fs.Func("warmup-iterations", "Number of warmup iterations", func(v string) error {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return fmt.Errorf("invalid warmup-iterations %q: %w", v, err)
		}
		warmupIterations = n
		warmupIterationsSet = true
		return nil
	})

	var bench benchFlags
	fs.Var(&bench, "bench", "Specific bench target to build and run (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if confidenceLevelSet {
		a.ConfidenceLevel = &confidenceLevel
	}
	if sampleSizeSet {
		a.SampleSize = &sampleSize
	}
	if warmupIterationsSet {
		a.WarmupIterations = &warmupIterations
	}
	a.Bench = []string(bench)

	if !a.IsManualMode() && (a.Baseline == "" || a.Candidate == "") {
		return nil, fmt.Errorf("either --baseline/--candidate or --baseline-url/--candidate-url must both be set")
	}

	return a, nil
}

// IsManualMode reports whether both harness URLs were given, meaning the
// orchestrator should attach to already-running harnesses instead of
// spawning new ones from checked-out source.
func (a *Args) IsManualMode() bool {
	return a.BaselineURL != "" && a.CandidateURL != ""
}

// ApplyToConfig overlays every explicitly-set flag onto cfg. Config
// file values win for anything left unset on the command line.
func (a *Args) ApplyToConfig(cfg *config.Config) {
	if a.ConfidenceLevel != nil {
		cfg.Hypothesis.ConfidenceLevel = *a.ConfidenceLevel
	}
	if a.SampleSize != nil {
		cfg.Orchestration.SampleSize = *a.SampleSize
	}
	if a.WarmupIterations != nil {
		cfg.Orchestration.WarmupIterations = *a.WarmupIterations
	}
	if len(a.Bench) > 0 {
		cfg.Build.BenchTargets = a.Bench
	}
}
