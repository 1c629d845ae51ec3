package domain

import (
	"strings"
	"time"
)

// IssueStatus tracks where a fingerprint sits in its remediation lifecycle.
// Transitions only move forward except an explicit user re-open.
type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusRemediated IssueStatus = "remediated"
	StatusIgnored    IssueStatus = "ignored"
)

// ParseIssueStatus maps a stored status string back to a known value.
func ParseIssueStatus(value string) (IssueStatus, bool) {
	switch IssueStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusRemediated:
		return StatusRemediated, true
	case StatusIgnored:
		return StatusIgnored, true
	default:
		return StatusOpen, false
	}
}

// AttemptOutcome classifies how a remediation run ended.
type AttemptOutcome string

const (
	OutcomeSuccess       AttemptOutcome = "success"
	OutcomeFailure       AttemptOutcome = "failure"
	OutcomeUserCancelled AttemptOutcome = "user_cancelled"
)

// AttemptRecord is one aggregated remediation attempt: the command sequence
// that ran, the last exit code, and excerpted output. Appended to the dedup
// store and never mutated, forming the audit trail.
type AttemptRecord struct {
	ID            string         `json:"id"`
	Command       string         `json:"command"`
	ExitCode      int            `json:"exit_code"`
	StdoutExcerpt string         `json:"stdout_excerpt"`
	StderrExcerpt string         `json:"stderr_excerpt"`
	Outcome       AttemptOutcome `json:"outcome"`
	Timestamp     time.Time      `json:"timestamp"`
}

// DedupRecord is the persistent cross-session state for one fingerprint:
// exactly one record exists per distinct fingerprint.
type DedupRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Title       string          `json:"title"`
	Severity    Severity        `json:"severity"`
	FirstSeen   time.Time       `json:"first_seen"`
	LastSeen    time.Time       `json:"last_seen"`
	Status      IssueStatus     `json:"status"`
	Attempts    []AttemptRecord `json:"attempts,omitempty"`
}
