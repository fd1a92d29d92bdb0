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

package orchestrator

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ealvarez/hypobench/internal/protocol"
	"github.com/ealvarez/hypobench/internal/telemetry"
)

// BenchmarkSamples holds the interleaved duration vectors collected for
// one benchmark.
type BenchmarkSamples struct {
	Name             string
	BaselineSamples  []time.Duration
	CandidateSamples []time.Duration
}

func newBenchmarkSamples(name string) *BenchmarkSamples {
	return &BenchmarkSamples{Name: name}
}

// Config parameterizes a single orchestration run.
type Config struct {
	Timeout            time.Duration
	WarmupIterations   int
	SampleSize         int
	InterleaveInterval time.Duration
}

// Orchestrator drives the claim/validate/warmup/sample protocol against a
// baseline and candidate harness and guarantees teardown on every exit
// path: every claim this orchestrator took is released, and every
// subprocess it spawned is shut down and killed, regardless of how Run
// returns.
type Orchestrator struct {
	cfg Config
}

// New builds an Orchestrator with the given configuration.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Run claims both harnesses, validates their benchmark sets match, and
// collects interleaved samples for every shared benchmark. Teardown
// (release claims, shut down and kill managed handles) runs unconditionally
// before Run returns, via the deferred teardown closure below, so a
// teardown failure can never mask the primary error.
func (o *Orchestrator) Run(ctx context.Context, baseline, candidate *HarnessHandle) ([]*BenchmarkSamples, error) {
	baselineNonce := uuid.NewString()
	candidateNonce := uuid.NewString()

	teardown := func() {
		recordOutcome := func(step string, err error) {
			if err != nil {
				telemetry.RecordTeardown(step, "error")
			} else {
				telemetry.RecordTeardown(step, "ok")
			}
		}

		recordOutcome("release", baseline.Release(context.Background(), baselineNonce))
		recordOutcome("release", candidate.Release(context.Background(), candidateNonce))

		if baseline.IsManaged() || candidate.IsManaged() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			recordOutcome("shutdown", baseline.Shutdown(shutdownCtx, baselineNonce))
			recordOutcome("shutdown", candidate.Shutdown(shutdownCtx, candidateNonce))
			cancel()

			time.Sleep(100 * time.Millisecond)
		}
		baseline.Kill()
		candidate.Kill()
		telemetry.RecordTeardown("kill", "ok")
	}
	defer teardown()

	if err := WaitForHealth(ctx, baseline, o.cfg.Timeout); err != nil {
		return nil, err
	}
	if err := WaitForHealth(ctx, candidate, o.cfg.Timeout); err != nil {
		return nil, err
	}

	if err := baseline.Claim(ctx, baselineNonce); err != nil {
		return nil, err
	}
	if err := candidate.Claim(ctx, candidateNonce); err != nil {
		return nil, err
	}

	baselineHeader := map[string]string{protocol.ClaimHeader: baselineNonce}
	candidateHeader := map[string]string{protocol.ClaimHeader: candidateNonce}

	baselineBenchmarks, err := baseline.ListBenchmarks(ctx, baselineHeader)
	if err != nil {
		return nil, err
	}
	candidateBenchmarks, err := candidate.ListBenchmarks(ctx, candidateHeader)
	if err != nil {
		return nil, err
	}
	sortedBaseline := append([]string(nil), baselineBenchmarks...)
	sortedCandidate := append([]string(nil), candidateBenchmarks...)
	sort.Strings(sortedBaseline)
	sort.Strings(sortedCandidate)
	if !reflect.DeepEqual(sortedBaseline, sortedCandidate) {
		return nil, fmt.Errorf("%w: baseline has %v, candidate has %v",
			ErrBenchmarkMismatch, baselineBenchmarks, candidateBenchmarks)
	}

	results := make([]*BenchmarkSamples, 0, len(baselineBenchmarks))
	for _, name := range baselineBenchmarks {
		samples, err := o.collectBenchmarkSamples(ctx, name, baseline, baselineHeader, candidate, candidateHeader)
		if err != nil {
			return nil, err
		}
		results = append(results, samples)
	}

	return results, nil
}

func (o *Orchestrator) collectBenchmarkSamples(
	ctx context.Context,
	name string,
	baseline *HarnessHandle, baselineHeader map[string]string,
	candidate *HarnessHandle, candidateHeader map[string]string,
) (*BenchmarkSamples, error) {
	samples := newBenchmarkSamples(name)

	for i := 0; i < o.cfg.WarmupIterations; i++ {
		if _, err := baseline.RunIteration(ctx, name, baselineHeader); err != nil {
			return nil, err
		}
		sleepInterleave(ctx, o.cfg.InterleaveInterval)
		if _, err := candidate.RunIteration(ctx, name, candidateHeader); err != nil {
			return nil, err
		}
		sleepInterleave(ctx, o.cfg.InterleaveInterval)
		telemetry.RecordSampleRound("warmup")
	}

	for i := 0; i < o.cfg.SampleSize; i++ {
		baselineDuration, err := baseline.RunIteration(ctx, name, baselineHeader)
		if err != nil {
			return nil, err
		}
		samples.BaselineSamples = append(samples.BaselineSamples, baselineDuration)
		telemetry.ObserveIteration("baseline", baselineDuration)
		sleepInterleave(ctx, o.cfg.InterleaveInterval)

		candidateDuration, err := candidate.RunIteration(ctx, name, candidateHeader)
		if err != nil {
			return nil, err
		}
		samples.CandidateSamples = append(samples.CandidateSamples, candidateDuration)
		telemetry.ObserveIteration("candidate", candidateDuration)
		sleepInterleave(ctx, o.cfg.InterleaveInterval)
		telemetry.RecordSampleRound("measured")
	}

	return samples, nil
}

func sleepInterleave(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
