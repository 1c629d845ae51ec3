// Package executor spawns remediation commands on the host shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// ShellRunner runs commands via the configured shell with the invoking
// process's ambient privileges; no privilege escalation is performed. Output
// is excerpted, not unbounded.
type ShellRunner struct {
	shell        string
	excerptBytes int
}

// NewShellRunner builds a runner, shell defaults to $SHELL then /bin/sh.
func NewShellRunner(shell string, excerptBytes int) *ShellRunner {
	if shell == "" || shell == "auto" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	if excerptBytes <= 0 {
		excerptBytes = domain.DefaultExcerptBytes
	}
	return &ShellRunner{shell: shell, excerptBytes: excerptBytes}
}

// Run implements ports.CommandRunner.
func (r *ShellRunner) Run(ctx context.Context, command string) (domain.CommandResult, error) {
	c := exec.CommandContext(ctx, r.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Stdin = os.Stdin // sudo in a suggested command prompts interactively

	start := time.Now()
	err := c.Run()

	result := domain.CommandResult{
		Command:    command,
		Stdout:     clip(stdout.String(), r.excerptBytes),
		Stderr:     clip(stderr.String(), r.excerptBytes),
		DurationMS: time.Since(start).Milliseconds(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		// Shell itself failed to start (not found, permission).
		result.ExitCode = -1
		return result, err
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n[... output truncated]"
}

var _ ports.CommandRunner = (*ShellRunner)(nil)
