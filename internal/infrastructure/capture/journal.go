// Package capture bounds and extracts the boot-to-now journal slice.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// ErrUnavailable indicates the journal could not be read at all. Callers must
// surface this distinctly; it is never equivalent to "no issues found".
var ErrUnavailable = errors.New("boot log source unavailable")

// runFunc abstracts process invocation so tests can fake journalctl output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// JournalCapturer reads the current boot's journal via journalctl and the
// failed-unit summary via systemctl. The snapshot is held in memory only.
type JournalCapturer struct {
	run                runFunc
	maxBytes           int
	includeFailedUnits bool
	logger             ports.Logger
	now                func() time.Time
}

// NewJournalCapturer builds a capturer from config.
func NewJournalCapturer(cfg domain.CaptureSettings, log ports.Logger) *JournalCapturer {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultCaptureMaxBytes
	}
	return &JournalCapturer{
		run:                defaultRun,
		maxBytes:           maxBytes,
		includeFailedUnits: cfg.FailedUnitsIncluded(),
		logger:             log,
		now:                time.Now,
	}
}

// Capture implements ports.LogCapturer. The slice is bounded by the current
// boot marker (-b 0) below and the invocation time above, so the payload
// stays finite regardless of uptime. Re-capturing within the same boot keeps
// the same lower bound.
func (c *JournalCapturer) Capture(ctx context.Context) (domain.LogSnapshot, error) {
	out, err := c.run(ctx, "journalctl", "-b", "0", "--no-pager", "-o", "short-iso")
	if err != nil {
		return domain.LogSnapshot{}, fmt.Errorf("%w: journalctl: %v", ErrUnavailable, err)
	}

	text := strings.TrimRight(string(out), "\n")
	if strings.TrimSpace(text) == "" {
		return domain.LogSnapshot{}, fmt.Errorf("%w: journal returned no entries for this boot", ErrUnavailable)
	}

	bootTime := firstTimestamp(text)
	if bootTime.IsZero() {
		c.logger.Warn("could not parse boot time from journal head", nil)
	}

	tail, truncated := tailBytes(text, c.maxBytes)
	if truncated {
		c.logger.Debug("snapshot truncated to tail", map[string]interface{}{"max_bytes": c.maxBytes})
	}

	snapshot := domain.LogSnapshot{
		Text:       tail,
		BootTime:   bootTime,
		CapturedAt: c.now(),
		Truncated:  truncated,
	}

	if c.includeFailedUnits {
		failed, err := c.run(ctx, "systemctl", "--failed", "--no-pager")
		if err != nil {
			c.logger.Warn("systemctl --failed unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			snapshot.FailedUnits = strings.TrimSpace(string(failed))
		}
	}

	return snapshot, nil
}

// Available reports whether the journal backend exists on this host.
func Available() error {
	if _, err := exec.LookPath("journalctl"); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func defaultRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// LC_ALL=C keeps timestamp formats consistent across locales.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	return cmd.Output()
}

// firstTimestamp parses the short-iso timestamp leading the first journal
// line, which marks the start of the boot window.
func firstTimestamp(text string) time.Time {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return time.Time{}
	}
	ts, err := time.Parse("2006-01-02T15:04:05-0700", fields[0])
	if err != nil {
		return time.Time{}
	}
	return ts
}

// tailBytes keeps at most max bytes from the end of the text, cut at a line
// boundary so the model never sees a half line.
func tailBytes(text string, max int) (string, bool) {
	if len(text) <= max {
		return text, false
	}
	cut := text[len(text)-max:]
	if idx := strings.IndexByte(cut, '\n'); idx >= 0 && idx+1 < len(cut) {
		cut = cut[idx+1:]
	}
	return cut, true
}

var _ ports.LogCapturer = (*JournalCapturer)(nil)
