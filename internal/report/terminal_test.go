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

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ealvarez/hypobench/internal/stats"
)

func makeComparison(name string, baselineMean, candidateMean, effectSize, pValue float64, winner *stats.Side) BenchmarkComparison {
	return BenchmarkComparison{
		Name: name,
		Baseline: stats.SampleStats{
			MeanNs:      baselineMean,
			StdDevNs:    baselineMean * 0.05,
			SampleCount: 100,
		},
		Candidate: stats.SampleStats{
			MeanNs:      candidateMean,
			StdDevNs:    candidateMean * 0.05,
			SampleCount: 100,
		},
		Result: stats.TestResult{
			PValue:                   pValue,
			StatisticallySignificant: pValue < 0.05,
			EffectSize:               effectSize,
			Winner:                   winner,
		},
	}
}

func TestReportWithoutColorsContainsExpectedColumns(t *testing.T) {
	candidate := stats.Candidate
	comparisons := []BenchmarkComparison{
		makeComparison("fast_path", 10000, 1000, 90.0, 0.001, &candidate),
	}

	var buf bytes.Buffer
	WithoutColors().Report(&buf, comparisons)
	out := buf.String()

	if !strings.Contains(out, "fast_path") {
		t.Fatalf("expected benchmark name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "faster") {
		t.Fatalf("expected 'faster' result in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Summary:") {
		t.Fatalf("expected summary footer, got:\n%s", out)
	}
}

func TestReportSummaryCountsByOutcome(t *testing.T) {
	candidate := stats.Candidate
	baseline := stats.Baseline
	comparisons := []BenchmarkComparison{
		makeComparison("a", 10000, 1000, 90.0, 0.001, &candidate),
		makeComparison("b", 1000, 10000, -900.0, 0.001, &baseline),
		makeComparison("c", 1000, 1000, 0.0, 1.0, nil),
	}

	var buf bytes.Buffer
	WithoutColors().Report(&buf, comparisons)
	out := buf.String()

	if !strings.Contains(out, "1 faster") {
		t.Fatalf("expected 1 faster in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "1 slower") {
		t.Fatalf("expected 1 slower in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "1 inconclusive") {
		t.Fatalf("expected 1 inconclusive in summary, got:\n%s", out)
	}
}

func TestLongBenchmarkNameTruncated(t *testing.T) {
	name := strings.Repeat("x", 60)
	comparisons := []BenchmarkComparison{
		makeComparison(name, 1000, 1000, 0.0, 1.0, nil),
	}

	var buf bytes.Buffer
	WithoutColors().Report(&buf, comparisons)
	out := buf.String()

	if strings.Contains(out, name) {
		t.Fatalf("expected name to be truncated, got:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Fatalf("expected truncation ellipsis, got:\n%s", out)
	}
}
