package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// RemediationService drives the per-issue confirm-and-execute state machine:
// Proposed -> AwaitingConfirmation -> Executing -> {Succeeded, Failed, Cancelled}.
type RemediationService struct {
	Runner   ports.CommandRunner
	Store    ports.DedupStore
	Security ports.SecurityService
	Prompter ports.ConfirmationPrompter
	Logger   ports.Logger
}

// Remediate executes one issue's command sequence after explicit user
// confirmation. Declining leaves the issue Proposed and Open with nothing
// written to the store. Commands run strictly in the supplied order and halt
// at the first non-zero exit: the sequence is treated as a dependent
// pipeline, and continuing past a failure is never the default.
//
// Interruptions are audited by what actually ran: a run stopped by user
// cancellation records user_cancelled, one stopped by an expiring deadline
// records failure, and a run interrupted before any command leaves no
// attempt record at all.
func (s *RemediationService) Remediate(ctx context.Context, issue domain.Issue) (domain.RemediationResult, error) {
	if s.Runner == nil || s.Store == nil || s.Security == nil || s.Prompter == nil || s.Logger == nil {
		return domain.RemediationResult{}, errors.New("services.RemediationService dependencies not satisfied")
	}
	if !issue.HasRemediation() {
		return domain.RemediationResult{State: domain.StateProposed}, errors.New("issue has no suggested commands")
	}

	result := domain.RemediationResult{State: domain.StateProposed}

	risk, err := s.assess(issue.Commands)
	if err != nil {
		return result, fmt.Errorf("security evaluate: %w", err)
	}
	result.Risk = risk

	if risk.Action == domain.ActionBlock {
		result.Blocked = true
		s.Logger.Warn("remediation blocked by guardrail", map[string]interface{}{
			"fingerprint": issue.Fingerprint,
			"reasons":     strings.Join(risk.Reasons, "; "),
		})
		return result, nil
	}

	result.State = domain.StateAwaitingConfirmation
	if !s.Prompter.Enabled() {
		return result, nil
	}
	confirmed, err := s.Prompter.Confirm(issue, risk)
	if err != nil {
		return result, fmt.Errorf("confirmation: %w", err)
	}
	if !confirmed {
		// Declined: back to Proposed, no attempt record, stays Open.
		result.State = domain.StateProposed
		return result, nil
	}
	result.Confirmed = true

	result.State = domain.StateExecuting
	attempt := s.execute(ctx, issue)
	if attempt.Command == "" {
		// Interrupted before anything ran: only things that ran leave
		// audit marks.
		result.State = stateForOutcome(attempt.Outcome)
		return result, nil
	}
	result.Attempt = &attempt
	result.State = stateForOutcome(attempt.Outcome)

	if err := s.Store.RecordRemediation(issue.Fingerprint, attempt); err != nil {
		return result, fmt.Errorf("record remediation: %w", err)
	}
	return result, nil
}

func stateForOutcome(outcome domain.AttemptOutcome) domain.RemediationState {
	switch outcome {
	case domain.OutcomeSuccess:
		return domain.StateSucceeded
	case domain.OutcomeUserCancelled:
		return domain.StateCancelled
	default:
		return domain.StateFailed
	}
}

// interruptionOutcome classifies a context interruption: an expiring
// deadline is a failed run, not a user decision.
func interruptionOutcome(err error) domain.AttemptOutcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.OutcomeFailure
	}
	return domain.OutcomeUserCancelled
}

// execute runs the command sequence and aggregates it into exactly one
// attempt record for the audit trail.
func (s *RemediationService) execute(ctx context.Context, issue domain.Issue) domain.AttemptRecord {
	attempt := domain.AttemptRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Outcome:   domain.OutcomeSuccess,
	}

	var executed []string
	var stdout, stderr []string

	for _, command := range issue.Commands {
		if err := ctx.Err(); err != nil {
			attempt.Outcome = interruptionOutcome(err)
			break
		}

		s.Logger.Info("running remediation command", map[string]interface{}{
			"fingerprint": issue.Fingerprint,
			"command":     command,
		})
		executed = append(executed, command)

		res, err := s.Runner.Run(ctx, command)
		attempt.ExitCode = res.ExitCode
		if res.Stdout != "" {
			stdout = append(stdout, res.Stdout)
		}
		if res.Stderr != "" {
			stderr = append(stderr, res.Stderr)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			attempt.Outcome = interruptionOutcome(ctxErr)
			break
		}
		if err != nil || res.ExitCode != 0 {
			if err != nil {
				stderr = append(stderr, err.Error())
			}
			attempt.Outcome = domain.OutcomeFailure
			break
		}
	}

	attempt.Command = strings.Join(executed, "\n")
	attempt.StdoutExcerpt = strings.Join(stdout, "\n")
	attempt.StderrExcerpt = strings.Join(stderr, "\n")
	return attempt
}

// assess evaluates every command in the sequence and keeps the most severe
// verdict.
func (s *RemediationService) assess(commands []string) (domain.RiskAssessment, error) {
	aggregate := domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionConfirm}
	for _, command := range commands {
		risk, err := s.Security.Evaluate(command)
		if err != nil {
			return domain.RiskAssessment{}, err
		}
		if actionRank(risk.Action) > actionRank(aggregate.Action) {
			aggregate.Action = risk.Action
		}
		if riskRank(risk.Level) > riskRank(aggregate.Level) {
			aggregate.Level = risk.Level
		}
		aggregate.Reasons = append(aggregate.Reasons, risk.Reasons...)
		aggregate.MatchedRules = append(aggregate.MatchedRules, risk.MatchedRules...)
	}
	return aggregate, nil
}

func actionRank(action domain.GuardrailAction) int {
	switch action {
	case domain.ActionBlock:
		return 2
	case domain.ActionExplicitConfirm:
		return 1
	default:
		return 0
	}
}

func riskRank(level domain.RiskLevel) int {
	switch level {
	case domain.RiskCritical:
		return 4
	case domain.RiskHigh:
		return 3
	case domain.RiskMedium:
		return 2
	case domain.RiskLow:
		return 1
	default:
		return 0
	}
}
