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

// Package main is the entry point for hypobench: a statistically
// rigorous A/B performance comparison tool for two software builds.
//
// In manual mode (--baseline-url/--candidate-url) it attaches to two
// already-running benchmark harnesses. In automatic mode
// (--baseline/--candidate) it passes both values through the no-op
// source provider and the prebuilt build manager, so each value is used
// as the path of an existing harness binary; nothing is checked out or
// compiled. Both binaries are then spawned as subprocesses. Either way
// it claims both harnesses exclusively, requires them to expose the same
// set of benchmarks, runs a warmup-then-interleaved sampling protocol
// against each one, and prints a Welch's-t-test comparison table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ealvarez/hypobench/internal/build"
	"github.com/ealvarez/hypobench/internal/cli"
	"github.com/ealvarez/hypobench/internal/config"
	"github.com/ealvarez/hypobench/internal/orchestrator"
	"github.com/ealvarez/hypobench/internal/report"
	"github.com/ealvarez/hypobench/internal/source"
	"github.com/ealvarez/hypobench/internal/stats"
	"github.com/ealvarez/hypobench/internal/telemetry"
)

func main() {
	fs := flag.NewFlagSet("hypobench", flag.ExitOnError)
	args, err := cli.Parse(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("argument error: %v", err)
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	args.ApplyToConfig(cfg)

	telemetry.Enable(telemetry.Config{
		Enabled:     args.MetricsAddr != "",
		MetricsAddr: args.MetricsAddr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	baseline, candidate, err := acquireHandles(ctx, args, cfg)
	if err != nil {
		log.Fatalf("failed to acquire harnesses: %v", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		Timeout:            harnessTimeout(cfg),
		WarmupIterations:   cfg.Orchestration.WarmupIterations,
		SampleSize:         cfg.Orchestration.SampleSize,
		InterleaveInterval: interleaveInterval(cfg),
	})

	results, err := orch.Run(ctx, baseline, candidate)
	if err != nil {
		log.Fatalf("orchestration failed: %v", err)
	}

	engine := stats.NewWelchTTest(cfg.Hypothesis.ConfidenceLevel)
	comparisons := make([]report.BenchmarkComparison, 0, len(results))
	for _, r := range results {
		comparisons = append(comparisons, report.BenchmarkComparison{
			Name:      r.Name,
			Baseline:  stats.CalculateSampleStats(r.BaselineSamples),
			Candidate: stats.CalculateSampleStats(r.CandidateSamples),
			Result:    engine.Analyze(r.BaselineSamples, r.CandidateSamples),
		})
	}

	reporter := report.NewTerminalReporter()
	if os.Getenv("NO_COLOR") != "" {
		reporter = report.WithoutColors()
	}
	reporter.Report(os.Stdout, comparisons)
}

// acquireHandles resolves both harness handles according to the chosen
// mode: connect to already-running harnesses in manual mode, or, in
// automatic mode, resolve both identifiers to existing binaries through
// the no-op source provider and prebuilt build manager and spawn them.
func acquireHandles(ctx context.Context, args *cli.Args, cfg *config.Config) (*orchestrator.HarnessHandle, *orchestrator.HarnessHandle, error) {
	if args.IsManualMode() {
		baseline, err := orchestrator.Connect(args.BaselineURL)
		if err != nil {
			return nil, nil, err
		}
		candidate, err := orchestrator.Connect(args.CandidateURL)
		if err != nil {
			return nil, nil, err
		}
		return baseline, candidate, nil
	}

	provider := source.NopProvider{}
	baselinePath, candidatePath, err := provider.PrepareSources(ctx, args.Baseline, args.Candidate)
	if err != nil {
		return nil, nil, err
	}

	manager := build.PrebuiltManager{BinaryPath: baselinePath}
	baselineBin, err := manager.Build(ctx, baselinePath)
	if err != nil {
		return nil, nil, err
	}
	manager = build.PrebuiltManager{BinaryPath: candidatePath}
	candidateBin, err := manager.Build(ctx, candidatePath)
	if err != nil {
		return nil, nil, err
	}

	baseline, err := orchestrator.Spawn(ctx, baselineBin, cfg.Network.BasePort)
	if err != nil {
		return nil, nil, err
	}
	candidate, err := orchestrator.Spawn(ctx, candidateBin, cfg.Network.BasePort+1)
	if err != nil {
		baseline.Kill()
		return nil, nil, err
	}

	if args.HarnessOutput {
		go streamLogs("baseline", baseline)
		go streamLogs("candidate", candidate)
	}

	return baseline, candidate, nil
}

func streamLogs(label string, h *orchestrator.HarnessHandle) {
	for line := range h.Logs() {
		fmt.Printf("[%s] %s\n", label, line)
	}
}

func harnessTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Network.HarnessTimeoutMs) * time.Millisecond
}

func interleaveInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Orchestration.InterleaveIntervalMs) * time.Millisecond
}
