// Copyright 2025 Esteban Alvarez. All Rights Reserved.
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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ealvarez/hypobench/internal/harness"
	"github.com/ealvarez/hypobench/internal/protocol"
)

func newStubHarness(t *testing.T, names ...string) (*httptest.Server, string) {
	t.Helper()
	reg := harness.NewRegistry()
	for _, name := range names {
		reg.Register(name, func(ctx context.Context) (time.Duration, error) {
			return time.Millisecond, nil
		})
	}
	s := harness.NewServer(reg)
	srv := httptest.NewServer(s.Mux())
	t.Cleanup(srv.Close)
	return srv, srv.URL
}

func TestConnectValidatesScheme(t *testing.T) {
	h, err := Connect("http://localhost:9100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.IsManaged() {
		t.Fatalf("expected connected handle to not be managed")
	}
	if h.BaseURL() != "http://localhost:9100" {
		t.Fatalf("got base url %q", h.BaseURL())
	}
}

func TestConnectTrimsTrailingSlash(t *testing.T) {
	h, err := Connect("http://localhost:9100/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.BaseURL() != "http://localhost:9100" {
		t.Fatalf("got base url %q, want trimmed", h.BaseURL())
	}
}

func TestConnectRejectsInvalidScheme(t *testing.T) {
	_, err := Connect("not-a-url")
	if err == nil {
		t.Fatalf("expected error for invalid scheme")
	}
}

func TestRunCollectsInterleavedSamples(t *testing.T) {
	_, baselineURL := newStubHarness(t, "bench_a")
	_, candidateURL := newStubHarness(t, "bench_a")

	baseline, err := Connect(baselineURL)
	if err != nil {
		t.Fatalf("connect baseline: %v", err)
	}
	candidate, err := Connect(candidateURL)
	if err != nil {
		t.Fatalf("connect candidate: %v", err)
	}

	o := New(Config{
		Timeout:            2 * time.Second,
		WarmupIterations:   1,
		SampleSize:         3,
		InterleaveInterval: time.Millisecond,
	})

	results, err := o.Run(context.Background(), baseline, candidate)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d benchmark results, want 1", len(results))
	}
	if len(results[0].BaselineSamples) != 3 || len(results[0].CandidateSamples) != 3 {
		t.Fatalf("got %d/%d samples, want 3/3", len(results[0].BaselineSamples), len(results[0].CandidateSamples))
	}
}

func TestRunFailsOnBenchmarkMismatch(t *testing.T) {
	_, baselineURL := newStubHarness(t, "bench_a")
	_, candidateURL := newStubHarness(t, "bench_b")

	baseline, _ := Connect(baselineURL)
	candidate, _ := Connect(candidateURL)

	o := New(Config{
		Timeout:            2 * time.Second,
		WarmupIterations:   0,
		SampleSize:         1,
		InterleaveInterval: time.Millisecond,
	})

	_, err := o.Run(context.Background(), baseline, candidate)
	if err == nil {
		t.Fatalf("expected benchmark mismatch error")
	}
}

func TestRunReleasesClaimsOnExit(t *testing.T) {
	baselineSrv, baselineURL := newStubHarness(t, "bench_a")
	_, candidateURL := newStubHarness(t, "bench_a")

	baseline, _ := Connect(baselineURL)
	candidate, _ := Connect(candidateURL)

	o := New(Config{
		Timeout:            2 * time.Second,
		WarmupIterations:   0,
		SampleSize:         1,
		InterleaveInterval: time.Millisecond,
	})

	if _, err := o.Run(context.Background(), baseline, candidate); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The harness should be claimable again by a fresh caller, proving the
	// prior claim was released during teardown.
	body, _ := json.Marshal(protocol.ClaimRequest{Nonce: "fresh-nonce"})
	resp, err := http.Post(baselineSrv.URL+"/claim", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("claim after teardown: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected harness to be claimable after teardown, got status %d", resp.StatusCode)
	}
}
