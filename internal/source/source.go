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

// Package source defines the interface a version-control checkout
// collaborator must satisfy. Automatic mode uses it to materialize a
// baseline and candidate working tree from two commit-ish identifiers;
// this package does not implement the checkout itself.
package source

import "context"

// Provider prepares two working trees for comparison and cleans them up
// once the orchestrator is done with them.
type Provider interface {
	// PrepareSources checks out baseline and candidate and returns the
	// local paths of their working trees.
	PrepareSources(ctx context.Context, baseline, candidate string) (baselinePath, candidatePath string, err error)
	// Cleanup removes any working trees PrepareSources created.
	Cleanup() error
}

// NopProvider treats its baseline/candidate arguments as already-existing
// local paths and never cleans anything up. Useful for manual mode and
// for tests that don't exercise real version-control checkout.
type NopProvider struct{}

// PrepareSources returns baseline and candidate unchanged.
func (NopProvider) PrepareSources(_ context.Context, baseline, candidate string) (string, string, error) {
	return baseline, candidate, nil
}

// Cleanup is a no-op.
func (NopProvider) Cleanup() error {
	return nil
}
