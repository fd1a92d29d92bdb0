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

// Package harness implements the long-lived benchmark-iteration server
// that an orchestrator claims and drives.
package harness

import (
	"context"
	"sort"
	"sync"
	"time"
)

// BenchmarkFunc runs one iteration of a registered benchmark and reports
// how long it took.
type BenchmarkFunc func(ctx context.Context) (time.Duration, error)

// Registry holds the named benchmarks a harness exposes.
type Registry struct {
	mu         sync.RWMutex
	benchmarks map[string]BenchmarkFunc
}

// NewRegistry creates an empty benchmark registry.
func NewRegistry() *Registry {
	return &Registry{benchmarks: make(map[string]BenchmarkFunc)}
}

// Register adds a benchmark under the given id, overwriting any existing
// benchmark with the same id.
func (r *Registry) Register(id string, fn BenchmarkFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.benchmarks[id] = fn
}

// List returns the registered benchmark ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.benchmarks))
	for id := range r.benchmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run executes one iteration of the named benchmark. ok is false if the
// benchmark id is not registered.
func (r *Registry) Run(ctx context.Context, id string) (d time.Duration, err error, ok bool) {
	r.mu.RLock()
	fn, found := r.benchmarks[id]
	r.mu.RUnlock()
	if !found {
		return 0, nil, false
	}
	d, err = fn(ctx)
	return d, err, true
}
