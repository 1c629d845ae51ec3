package executor

import (
	"context"
	"strings"
	"testing"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	r := NewShellRunner("/bin/sh", 0)

	res, err := r.Run(context.Background(), "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	r := NewShellRunner("/bin/sh", 0)

	res, err := r.Run(context.Background(), "exit 3")
	if err != nil {
		t.Fatalf("non-zero exit must be reported via ExitCode, got error %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestRunMissingShellIsAnError(t *testing.T) {
	r := NewShellRunner("/nonexistent/shell", 0)

	res, err := r.Run(context.Background(), "echo hi")
	if err == nil {
		t.Fatal("expected a spawn error")
	}
	if res.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1 for spawn failure", res.ExitCode)
	}
}

func TestRunClipsLongOutput(t *testing.T) {
	r := NewShellRunner("/bin/sh", 64)

	res, err := r.Run(context.Background(), "yes x | head -c 4096")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasSuffix(res.Stdout, "[... output truncated]") {
		t.Fatalf("long output not clipped: %d bytes", len(res.Stdout))
	}
	if len(res.Stdout) > 64+len("\n[... output truncated]") {
		t.Fatalf("excerpt too long: %d bytes", len(res.Stdout))
	}
}
