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

// Package telemetry provides opt-in, low-overhead Prometheus
// instrumentation for the orchestrator. When disabled, every exported
// function is a no-op, so the orchestration hot path never pays for
// telemetry it didn't ask for.
package telemetry

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether telemetry is active and where it's exposed.
//
// MetricsAddr, when non-empty, starts a dedicated HTTP server serving
// /metrics. Leave it empty to register metrics on the default registry
// without exposing them.
type Config struct {
	Enabled     bool
	MetricsAddr string
}

var (
	modEnabled atomic.Bool

	claimConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hypobench_claim_conflicts_total",
		Help: "Total number of /claim requests rejected because a harness was already claimed",
	})
	sampleRoundsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hypobench_sample_rounds_total",
		Help: "Total warmup and measured sampling rounds executed, by phase",
	}, []string{"phase"})
	teardownOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hypobench_teardown_outcomes_total",
		Help: "Total teardown attempts against harness handles, by step and outcome",
	}, []string{"step", "outcome"})
	iterationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hypobench_iteration_duration_seconds",
		Help:    "Observed benchmark iteration durations reported by a harness, by side",
		Buckets: prometheus.DefBuckets,
	}, []string{"side"})
)

func init() {
	prometheus.MustRegister(claimConflictsTotal, sampleRoundsTotal, teardownOutcomesTotal, iterationDuration)
}

// Enable turns telemetry on and optionally starts a dedicated /metrics
// server. Safe to call multiple times.
func Enable(cfg Config) {
	modEnabled.Store(cfg.Enabled)
	if cfg.Enabled && cfg.MetricsAddr != "" {
		startMetricsEndpoint(cfg.MetricsAddr)
	}
}

// Enabled reports whether telemetry is active.
func Enabled() bool { return modEnabled.Load() }

// RecordClaimConflict increments the claim-conflict counter.
func RecordClaimConflict() {
	if !modEnabled.Load() {
		return
	}
	claimConflictsTotal.Inc()
}

// RecordSampleRound increments the sample-round counter for a phase
// ("warmup" or "measured").
func RecordSampleRound(phase string) {
	if !modEnabled.Load() {
		return
	}
	sampleRoundsTotal.WithLabelValues(phase).Inc()
}

// RecordTeardown increments the teardown-outcome counter for a step
// ("release", "shutdown", "kill") and outcome ("ok", "error").
func RecordTeardown(step, outcome string) {
	if !modEnabled.Load() {
		return
	}
	teardownOutcomesTotal.WithLabelValues(step, outcome).Inc()
}

// ObserveIteration records an iteration duration for a side
// ("baseline" or "candidate").
func ObserveIteration(side string, d time.Duration) {
	if !modEnabled.Load() {
		return
	}
	iterationDuration.WithLabelValues(side).Observe(d.Seconds())
}

func startMetricsEndpoint(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = server.ListenAndServe()
	}()
}
