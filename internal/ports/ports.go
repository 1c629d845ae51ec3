// Package ports defines the interfaces between the triage core and its
// adapters.
//
// The application layer depends only on these abstractions, so the
// deterministic dedup and execution logic can be tested with canned
// capture/extraction results and a fake command runner, without touching
// journalctl, the network, or a real shell.
package ports

import (
	"context"

	"github.com/doeshing/bootlens/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.config/bootlens/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// LogCapturer bounds and extracts the boot-to-now log slice. A failing or
// empty log source must return an error, never an empty snapshot that could
// be mistaken for "logs clean".
type LogCapturer interface {
	Capture(context.Context) (domain.LogSnapshot, error)
}

// IssueExtractor sends a snapshot to the remote model and returns typed,
// severity-ranked issues. Responses that do not match the required schema
// are an error, not a partial result.
type IssueExtractor interface {
	Extract(context.Context, domain.LogSnapshot) (domain.Analysis, error)
}

// ChatProvider continues the analysis conversation with free-text follow-up
// questions, forwarded verbatim plus snapshot context to the model channel.
type ChatProvider interface {
	Chat(ctx context.Context, snapshot domain.LogSnapshot, issue *domain.Issue, history []domain.ChatTurn, message string) (string, error)
}

// DedupStore is the only cross-session state: fingerprint -> DedupRecord.
// All mutations are serialized by the implementation.
type DedupStore interface {
	// Filter returns only issues whose record is absent or Open.
	Filter(issues []domain.Issue) ([]domain.Issue, error)
	// RecordSeen upserts a record, creating it Open if new. Depending on the
	// re-occurrence policy it re-opens a Remediated record that reappears.
	RecordSeen(issue domain.Issue) error
	// RecordRemediation appends an attempt and transitions the record to
	// Remediated iff the outcome is Success.
	RecordRemediation(fingerprint string, attempt domain.AttemptRecord) error
	// Ignore permanently suppresses a fingerprint until manual reset.
	Ignore(fingerprint string) error
	// Reopen is the explicit user override back to Open.
	Reopen(fingerprint string) error
	Record(fingerprint string) (domain.DedupRecord, bool, error)
	Records(limit int) ([]domain.DedupRecord, error)
	Close() error
}

// CommandRunner spawns a single shell command and captures its outcome.
// Kept narrow so tests can substitute a fake runner and assert on the exact
// argument and ordering contract.
type CommandRunner interface {
	Run(ctx context.Context, command string) (domain.CommandResult, error)
}

// SecurityService evaluates suggested commands against guardrail rules
// before they are offered for execution.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// ConfirmationPrompter handles the explicit user approval that gates every
// remediation run.
type ConfirmationPrompter interface {
	Confirm(issue domain.Issue, risk domain.RiskAssessment) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
