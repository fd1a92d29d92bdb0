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

package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ealvarez/hypobench/internal/protocol"
	"github.com/ealvarez/hypobench/internal/telemetry"
)

// Server is the HTTP-exposed benchmark-iteration harness. It is single
// tenant: once claimed by a nonce, /benchmarks, /run and /shutdown require
// that nonce to be presented in the X-Harness-Claim header. /health,
// /claim and /release are never gated by the header.
type Server struct {
	registry *Registry

	mu    sync.Mutex
	nonce string // empty when unclaimed

	httpServer *http.Server
	shutdown   uint32
	done       chan struct{}
}

// NewServer builds a harness server around the given registry.
func NewServer(registry *Registry) *Server {
	return &Server{
		registry: registry,
		done:     make(chan struct{}),
	}
}

// Mux builds the ServeMux with all harness routes registered. Exposed
// separately from ListenAndServe so tests can exercise handlers directly
// via httptest.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/benchmarks", s.handleListBenchmarks)
	mux.HandleFunc("/run", s.handleRun)
	mux.HandleFunc("/shutdown", s.handleShutdown)
	mux.HandleFunc("/claim", s.handleClaim)
	mux.HandleFunc("/release", s.handleRelease)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// checkClaim enforces that, once the harness is claimed, the caller
// presents the matching nonce in X-Harness-Claim. Returns true if the
// request is authorized to proceed.
func (s *Server) checkClaim(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	expected := s.nonce
	s.mu.Unlock()

	if expected == "" {
		return true
	}

	provided := r.Header.Get(protocol.ClaimHeader)
	if provided == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "harness is claimed, X-Harness-Claim header required",
		})
		return false
	}
	if provided != expected {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "invalid claim nonce",
		})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.HealthResponse{Status: "healthy"})
}

func (s *Server) handleListBenchmarks(w http.ResponseWriter, r *http.Request) {
	if !s.checkClaim(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, protocol.BenchmarkListResponse{Benchmarks: s.registry.List()})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.checkClaim(w, r) {
		return
	}

	var req protocol.RunIterationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.NewFailureResponse("malformed request body"))
		return
	}

	d, err, ok := s.registry.Run(r.Context(), req.BenchmarkID)
	if !ok {
		writeJSON(w, http.StatusNotFound, protocol.NewFailureResponse(
			fmt.Sprintf("benchmark %q not found", req.BenchmarkID)))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusOK, protocol.NewFailureResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewSuccessResponse(d))
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req protocol.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ClaimResponse{Success: false, Error: "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.nonce == "":
		s.nonce = req.Nonce
		writeJSON(w, http.StatusOK, protocol.ClaimResponse{Success: true})
	case s.nonce == req.Nonce:
		// Idempotent reclaim by the same caller.
		writeJSON(w, http.StatusOK, protocol.ClaimResponse{Success: true})
	default:
		telemetry.RecordClaimConflict()
		writeJSON(w, http.StatusConflict, protocol.ClaimResponse{Success: false, Error: "harness already claimed"})
	}
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req protocol.ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ReleaseResponse{Success: false, Error: "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nonce == "" || s.nonce != req.Nonce {
		writeJSON(w, http.StatusBadRequest, protocol.ReleaseResponse{Success: false, Error: "not claimed by this nonce"})
		return
	}
	s.nonce = ""
	writeJSON(w, http.StatusOK, protocol.ReleaseResponse{Success: true})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !s.checkClaim(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, protocol.ShutdownResponse{Status: "shutting_down"})

	if atomic.CompareAndSwapUint32(&s.shutdown, 0, 1) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.httpServer.Shutdown(ctx)
			close(s.done)
		}()
	}
}

// ListenAndServe starts the harness HTTP server on addr and blocks until
// /shutdown is called or the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Mux(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Printf("Benchmark harness listening on %s\n", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case <-s.done:
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
