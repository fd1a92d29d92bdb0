//go:build e2e

package e2e

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/ealvarez/hypobench/internal/orchestrator"
)

// scanLines copies lines from the given reader (stdout/stderr of a child
// process) into a channel so tests can observe subprocess logs in near
// real-time.
func scanLines(r io.ReadCloser, out chan<- string) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		out <- s.Text()
	}
}

// exeName returns the executable name for the current OS (adds .exe on
// Windows).
func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// buildBinary builds importPath into outName inside a fresh temp dir and
// returns the binary's path.
func buildBinary(t *testing.T, outName, importPath string) string {
	t.Helper()
	tmpDir := t.TempDir()
	exe := filepath.Join(tmpDir, exeName(outName))
	build := exec.Command("go", "build", "-o", exe, importPath)
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build %s: %v", importPath, err)
	}
	return exe
}

// freePort asks the OS for a currently-unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// TestE2E_FullComparisonAgainstSpawnedHarnesses spawns two copies of the
// example harness binary, runs a full orchestration pass against them,
// and verifies that at least one benchmark was sampled and that every
// benchmark has exactly SampleSize baseline and candidate samples.
func TestE2E_FullComparisonAgainstSpawnedHarnesses(t *testing.T) {
	harnessBin := buildBinary(t, "hypobench-harness-example", "github.com/ealvarez/hypobench/cmd/hypobench-harness-example")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	baseline, err := orchestrator.Spawn(ctx, harnessBin, freePort(t))
	if err != nil {
		t.Fatalf("spawn baseline: %v", err)
	}
	candidate, err := orchestrator.Spawn(ctx, harnessBin, freePort(t))
	if err != nil {
		t.Fatalf("spawn candidate: %v", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		Timeout:            5 * time.Second,
		WarmupIterations:   2,
		SampleSize:         10,
		InterleaveInterval: 5 * time.Millisecond,
	})

	results, err := orch.Run(ctx, baseline, candidate)
	if err != nil {
		t.Fatalf("orchestration run failed: %v", err)
	}

	if len(results) == 0 {
		t.Fatalf("expected at least one benchmark result")
	}
	for _, r := range results {
		if len(r.BaselineSamples) != 10 {
			t.Fatalf("benchmark %s: expected 10 baseline samples, got %d", r.Name, len(r.BaselineSamples))
		}
		if len(r.CandidateSamples) != 10 {
			t.Fatalf("benchmark %s: expected 10 candidate samples, got %d", r.Name, len(r.CandidateSamples))
		}
	}
}

// TestE2E_ManualModeAttachesToRunningHarness starts the example harness
// as a plain subprocess outside the orchestrator's spawn path, then
// attaches to it manually the way --baseline-url/--candidate-url would,
// confirming claim/list/release all work end-to-end over the wire.
func TestE2E_ManualModeAttachesToRunningHarness(t *testing.T) {
	harnessBin := buildBinary(t, "hypobench-harness-example", "github.com/ealvarez/hypobench/cmd/hypobench-harness-example")
	port := freePort(t)

	cmd := exec.Command(harnessBin)
	cmd.Env = append(os.Environ(), "CH_PORT="+strconv.Itoa(port))
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start harness: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	baseURL := "http://127.0.0.1:" + strconv.Itoa(port)
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("harness did not become healthy in time: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	handle, err := orchestrator.Connect(baseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := orchestrator.WaitForHealth(context.Background(), handle, 2*time.Second); err != nil {
		t.Fatalf("wait for health: %v", err)
	}
	if err := handle.Claim(context.Background(), "manual-test-nonce"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	benchmarks, err := handle.ListBenchmarks(context.Background(), map[string]string{"X-Harness-Claim": "manual-test-nonce"})
	if err != nil {
		t.Fatalf("list benchmarks: %v", err)
	}
	if len(benchmarks) == 0 {
		t.Fatalf("expected at least one benchmark")
	}
	if err := handle.Release(context.Background(), "manual-test-nonce"); err != nil {
		t.Fatalf("release: %v", err)
	}

	if handle.IsManaged() {
		t.Fatalf("a Connect()-attached handle must never report as managed")
	}
}
