package domain

// RemediationState tracks an issue through the confirm-and-execute machine:
// Proposed -> AwaitingConfirmation -> Executing -> {Succeeded, Failed, Cancelled}.
type RemediationState string

const (
	StateProposed             RemediationState = "proposed"
	StateAwaitingConfirmation RemediationState = "awaiting_confirmation"
	StateExecuting            RemediationState = "executing"
	StateSucceeded            RemediationState = "succeeded"
	StateFailed               RemediationState = "failed"
	StateCancelled            RemediationState = "cancelled"
)

// Terminal reports whether the state machine has finished for this issue.
func (s RemediationState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// CommandResult wraps details from a single command execution.
type CommandResult struct {
	Command    string
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMS int64
}

// RemediationResult is the canonical outcome propagated back to the CLI.
// Attempt is nil when the issue never left Proposed (declined or blocked);
// declining writes nothing to the dedup store.
type RemediationResult struct {
	State     RemediationState
	Confirmed bool
	Blocked   bool
	Risk      RiskAssessment
	Attempt   *AttemptRecord
}
