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

// Package protocol defines the JSON wire messages exchanged between a
// harness and the orchestrator that drives it.
package protocol

import (
	"errors"
	"time"
)

// ClaimHeader is the HTTP header a caller must present, once a harness has
// been claimed, to authorize /benchmarks, /run and /shutdown. /claim and
// /release never require it; /release is checked against its body nonce.
const ClaimHeader = "X-Harness-Claim"

var (
	// ErrInvalidURL is returned when a harness URL cannot be parsed or is
	// missing a supported scheme.
	ErrInvalidURL = errors.New("protocol: invalid harness url")
	// ErrClaimConflict is returned when a harness is already claimed by a
	// different nonce.
	ErrClaimConflict = errors.New("protocol: harness already claimed")
	// ErrUnauthorized is returned when a request's claim header does not
	// match the harness's current claim.
	ErrUnauthorized = errors.New("protocol: claim header missing or mismatched")
	// ErrBenchmarkMissing is returned when a requested benchmark is not
	// registered on a harness.
	ErrBenchmarkMissing = errors.New("protocol: benchmark not found")
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// BenchmarkListResponse is returned by GET /benchmarks.
type BenchmarkListResponse struct {
	Benchmarks []string `json:"benchmarks"`
}

// RunIterationRequest is the body of POST /run.
type RunIterationRequest struct {
	BenchmarkID string `json:"benchmark_id"`
}

// RunIterationResponse is returned by POST /run. Error is only populated
// when Success is false.
type RunIterationResponse struct {
	DurationNs uint64 `json:"duration_ns"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// NewSuccessResponse builds a RunIterationResponse for a successful iteration.
func NewSuccessResponse(d time.Duration) RunIterationResponse {
	return RunIterationResponse{DurationNs: uint64(d.Nanoseconds()), Success: true}
}

// NewFailureResponse builds a RunIterationResponse for a failed iteration.
func NewFailureResponse(msg string) RunIterationResponse {
	return RunIterationResponse{Success: false, Error: msg}
}

// Duration returns the measured duration of a successful response.
func (r RunIterationResponse) Duration() time.Duration {
	return time.Duration(r.DurationNs) * time.Nanosecond
}

// ShutdownResponse is returned by POST /shutdown.
type ShutdownResponse struct {
	Status string `json:"status"`
}

// ClaimRequest is the body of POST /claim.
type ClaimRequest struct {
	Nonce string `json:"nonce"`
}

// ClaimResponse is returned by POST /claim. Error is only populated when
// Success is false.
type ClaimResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReleaseRequest is the body of POST /release.
type ReleaseRequest struct {
	Nonce string `json:"nonce"`
}

// ReleaseResponse is returned by POST /release. Error is only populated
// when Success is false.
type ReleaseResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
