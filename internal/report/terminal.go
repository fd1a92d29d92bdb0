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

// Package report renders finished benchmark comparisons as a terminal
// table.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ealvarez/hypobench/internal/stats"
)

// BenchmarkComparison ties a benchmark's descriptive statistics to its
// hypothesis-test verdict.
type BenchmarkComparison struct {
	Name      string
	Baseline  stats.SampleStats
	Candidate stats.SampleStats
	Result    stats.TestResult
}

// TerminalReporter prints a comparison table to a writer, defaulting to
// ANSI-colored output.
type TerminalReporter struct {
	UseColors bool
}

// NewTerminalReporter returns a reporter with color output enabled.
func NewTerminalReporter() TerminalReporter {
	return TerminalReporter{UseColors: true}
}

// WithoutColors returns a reporter with color output disabled.
func WithoutColors() TerminalReporter {
	return TerminalReporter{UseColors: false}
}

func formatTime(ns float64) string {
	switch {
	case ns >= 1_000_000_000.0:
		return fmt.Sprintf("%.3f s", ns/1_000_000_000.0)
	case ns >= 1_000_000.0:
		return fmt.Sprintf("%.3f ms", ns/1_000_000.0)
	case ns >= 1_000.0:
		return fmt.Sprintf("%.3f us", ns/1_000.0)
	default:
		return fmt.Sprintf("%.3f ns", ns)
	}
}

func formatTimeWithStdDev(s stats.SampleStats) string {
	return fmt.Sprintf("%s (+/- %s)", formatTime(s.MeanNs), formatTime(s.StdDevNs))
}

func formatChange(effectSize float64) string {
	switch {
	case effectSize > 0.0:
		return fmt.Sprintf("-%.2f%%", effectSize)
	case effectSize < 0.0:
		return fmt.Sprintf("+%.2f%%", -effectSize)
	default:
		return "0.00%"
	}
}

func resultText(result stats.TestResult) string {
	if !result.StatisticallySignificant || result.Winner == nil {
		return "inconclusive"
	}
	if *result.Winner == stats.Candidate {
		return "faster"
	}
	return "slower"
}

func (t TerminalReporter) formatResult(result stats.TestResult) string {
	text := resultText(result)
	if !t.UseColors {
		return text
	}
	switch text {
	case "faster":
		return color.New(color.FgGreen, color.Bold).Sprint(text)
	case "slower":
		return color.New(color.FgRed, color.Bold).Sprint(text)
	default:
		return color.New(color.FgYellow).Sprint(text)
	}
}

func (t TerminalReporter) formatChangeColored(result stats.TestResult) string {
	change := formatChange(result.EffectSize)
	if !t.UseColors {
		return change
	}
	text := resultText(result)
	switch text {
	case "faster":
		return color.New(color.FgGreen).Sprint(change)
	case "slower":
		return color.New(color.FgRed).Sprint(change)
	default:
		return color.New(color.FgYellow).Sprint(change)
	}
}

func (t TerminalReporter) printHeader(w io.Writer) {
	fmt.Fprintln(w)
	header := fmt.Sprintf("%-40s %24s %24s %12s %10s %14s",
		"Benchmark", "Baseline", "Candidate", "Change", "p-value", "Result")
	if t.UseColors {
		header = color.New(color.Bold).Sprint(header)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", 130))
}

// pad right-aligns text to width, accounting for invisible ANSI escape
// bytes in colored by computing the padding from visibleLen rather than
// len(colored).
func pad(colored string, visibleLen, width int) string {
	n := width - visibleLen
	if n <= 0 {
		return colored
	}
	return strings.Repeat(" ", n) + colored
}

func (t TerminalReporter) printRow(w io.Writer, c BenchmarkComparison) {
	name := c.Name
	if len(name) > 38 {
		name = name[:35] + "..."
	}

	baseline := formatTimeWithStdDev(c.Baseline)
	candidate := formatTimeWithStdDev(c.Candidate)
	changeVisible := formatChange(c.Result.EffectSize)
	change := t.formatChangeColored(c.Result)
	pValue := fmt.Sprintf("%.4f", c.Result.PValue)
	resultVisible := resultText(c.Result)
	result := t.formatResult(c.Result)

	fmt.Fprintf(w, "%-40s %24s %24s %s %10s %s\n",
		name, baseline, candidate,
		pad(change, len(changeVisible), 12),
		pValue,
		pad(result, len(resultVisible), 14))
}

func (t TerminalReporter) printSummary(w io.Writer, results []BenchmarkComparison) {
	var faster, slower, inconclusive int
	for _, c := range results {
		switch resultText(c.Result) {
		case "faster":
			faster++
		case "slower":
			slower++
		default:
			inconclusive++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 130))

	label := "Summary:"
	if t.UseColors {
		label = color.New(color.Bold).Sprint(label)
	}
	fmt.Fprintf(w, "%s ", label)

	fasterText := fmt.Sprintf("%d faster", faster)
	slowerText := fmt.Sprintf("%d slower", slower)
	inconclusiveText := fmt.Sprintf("%d inconclusive", inconclusive)

	if t.UseColors {
		fasterText = color.New(color.FgGreen).Sprint(fasterText)
		slowerText = color.New(color.FgRed).Sprint(slowerText)
		inconclusiveText = color.New(color.FgYellow).Sprint(inconclusiveText)
	}
	fmt.Fprintf(w, "%s, %s, %s\n", fasterText, slowerText, inconclusiveText)
	fmt.Fprintln(w)
}

// Report prints the full comparison table to w.
func (t TerminalReporter) Report(w io.Writer, results []BenchmarkComparison) {
	t.printHeader(w)
	for _, c := range results {
		t.printRow(w, c)
	}
	t.printSummary(w, results)
}
