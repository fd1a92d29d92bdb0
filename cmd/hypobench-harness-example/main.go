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

// Package main is a sample benchmark harness binary, useful for manual
// testing of the orchestrator and as the subprocess the end-to-end test
// suite spawns. It registers a handful of CPU-bound benchmarks at
// different input sizes, mirroring the shape a real project's bench
// target would expose.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ealvarez/hypobench/internal/harness"
)

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func registerCountRuneBenchmarks(registry *harness.Registry) {
	for _, size := range []int{100, 1000, 10000} {
		input := strings.Repeat("a", size)
		name := fmt.Sprintf("char_counting/count_rune/%d", size)
		registry.Register(name, func(_ context.Context) (time.Duration, error) {
			start := time.Now()
			_ = countRune(input, 'a')
			return time.Since(start), nil
		})
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// registerWordCountBenchmarks mirrors registerCountRuneBenchmarks at the
// same input sizes, giving the harness a second CPU-bound family with a
// different access pattern (field-splitting over a byte slice rather
// than a single rune-by-rune scan).
func registerWordCountBenchmarks(registry *harness.Registry) {
	for _, size := range []int{100, 1000, 10000} {
		input := strings.Repeat("hello world ", size)
		name := fmt.Sprintf("word_counting/count_words/%d", size)
		registry.Register(name, func(_ context.Context) (time.Duration, error) {
			start := time.Now()
			_ = countWords(input)
			return time.Since(start), nil
		})
	}
}

func main() {
	portStr := os.Getenv("CH_PORT")
	if portStr == "" {
		log.Fatal("CH_PORT environment variable must be set")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("CH_PORT must be a valid port number: %v", err)
	}

	registry := harness.NewRegistry()
	registerCountRuneBenchmarks(registry)
	registerWordCountBenchmarks(registry)

	server := harness.NewServer(registry)
	addr := fmt.Sprintf(":%d", port)
	if err := server.ListenAndServe(context.Background(), addr); err != nil {
		log.Fatalf("harness server stopped: %v", err)
	}
}
