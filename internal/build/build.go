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

// Package build defines the interface a build-tool invocation
// collaborator must satisfy. Automatic mode uses it to compile a
// benchmark harness binary out of a prepared source tree; this package
// does not invoke any compiler itself.
package build

import (
	"context"
	"fmt"
	"os"
)

// Manager compiles a benchmark harness binary from a source path.
type Manager interface {
	// Build produces a harness binary and returns its path.
	Build(ctx context.Context, path string) (binaryPath string, err error)
}

// PrebuiltManager expects the binary to already exist at a configured
// path and simply returns it, performing no compilation. Useful for
// manual mode and for tests that don't exercise a real build tool.
type PrebuiltManager struct {
	BinaryPath string
}

// Build returns the configured binary path after confirming it exists.
func (m PrebuiltManager) Build(_ context.Context, _ string) (string, error) {
	if _, err := os.Stat(m.BinaryPath); err != nil {
		return "", fmt.Errorf("prebuilt binary not found at %s: %w", m.BinaryPath, err)
	}
	return m.BinaryPath, nil
}
