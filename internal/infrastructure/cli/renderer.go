package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/doeshing/bootlens/internal/domain"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgRed)
	moderateColor = color.New(color.FgYellow)
	lowColor      = color.New(color.FgCyan)
	okColor       = color.New(color.FgGreen)
	dimColor      = color.New(color.Faint)
)

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityCritical:
		return criticalColor
	case domain.SeverityHigh:
		return highColor
	case domain.SeverityModerate:
		return moderateColor
	default:
		return lowColor
	}
}

func renderSessionHeader(session domain.Session) {
	fmt.Printf("Boot window: %s -> %s",
		session.Snapshot.BootTime.Format("2006-01-02 15:04:05"),
		session.Snapshot.CapturedAt.Format("15:04:05"))
	if session.Snapshot.Truncated {
		dimColor.Print("  (tail only)")
	}
	fmt.Println()

	if session.Summary != "" {
		fmt.Printf("Assessment: %s\n", session.Summary)
	}
	if suppressed := session.SuppressedCount(); suppressed > 0 {
		dimColor.Printf("%d previously handled issue(s) suppressed; `bootlens history` lists them\n", suppressed)
	}
	fmt.Println()
}

func renderIssue(index, total int, issue domain.Issue) {
	severityColor(issue.Severity).Printf("[%s] ", strings.ToUpper(string(issue.Severity)))
	fmt.Printf("%s  (%d/%d)\n", issue.Title, index+1, total)
	dimColor.Printf("fingerprint %s\n", issue.Fingerprint)
	if issue.Description != "" {
		fmt.Printf("%s\n", issue.Description)
	}
	if issue.Excerpt != "" {
		fmt.Println("log excerpt:")
		for _, line := range strings.Split(issue.Excerpt, "\n") {
			dimColor.Printf("  | %s\n", line)
		}
	}
	if issue.HasRemediation() {
		fmt.Println("suggested fix:")
		for i, command := range issue.Commands {
			fmt.Printf("  %d. %s\n", i+1, command)
		}
	} else {
		dimColor.Println("no remediation suggested")
	}
}

func renderRemediationResult(result domain.RemediationResult) {
	switch {
	case result.Blocked:
		criticalColor.Println("Blocked by guardrail; command not executed:")
		for _, reason := range result.Risk.Reasons {
			fmt.Printf(" - %s\n", reason)
		}
	case result.State == domain.StateSucceeded:
		okColor.Println("Remediation succeeded; issue marked remediated.")
	case result.State == domain.StateFailed:
		highColor.Println("Remediation failed; issue stays open for another attempt.")
		if result.Attempt != nil {
			fmt.Printf("exit code %d\n", result.Attempt.ExitCode)
			if result.Attempt.StderrExcerpt != "" {
				fmt.Println("stderr:")
				fmt.Println(indent(result.Attempt.StderrExcerpt))
			}
		}
	case result.State == domain.StateCancelled:
		moderateColor.Println("Remediation cancelled; issue stays open.")
	case !result.Confirmed:
		dimColor.Println("Skipped; issue stays open.")
	}

	if result.Attempt != nil && result.Attempt.StdoutExcerpt != "" && result.State == domain.StateSucceeded {
		fmt.Println("output:")
		fmt.Println(indent(result.Attempt.StdoutExcerpt))
	}
}

func renderRecords(records []domain.DedupRecord) {
	if len(records) == 0 {
		fmt.Println("No recorded issues yet. Run `bootlens` to analyze this boot.")
		return
	}
	for _, record := range records {
		renderRecordLine(record)
	}
}

func renderRecordLine(record domain.DedupRecord) {
	severityColor(record.Severity).Printf("[%s] ", strings.ToUpper(string(record.Severity)))
	fmt.Printf("%s\n", record.Title)
	fmt.Printf("  %s  status=%s  first seen %s, last seen %s, %d attempt(s)\n",
		record.Fingerprint,
		statusLabel(record.Status),
		humanize.Time(record.FirstSeen),
		humanize.Time(record.LastSeen),
		len(record.Attempts))
}

func renderRecordDetail(record domain.DedupRecord) {
	renderRecordLine(record)
	for _, attempt := range record.Attempts {
		fmt.Printf("\n  attempt %s (%s, exit %d, %s)\n",
			attempt.ID, attempt.Outcome, attempt.ExitCode, humanize.Time(attempt.Timestamp))
		for _, line := range strings.Split(attempt.Command, "\n") {
			fmt.Printf("    $ %s\n", line)
		}
		if attempt.StdoutExcerpt != "" {
			fmt.Println("    stdout:")
			fmt.Println(indent(indent(attempt.StdoutExcerpt)))
		}
		if attempt.StderrExcerpt != "" {
			fmt.Println("    stderr:")
			fmt.Println(indent(indent(attempt.StderrExcerpt)))
		}
	}
}

func renderHealthReport(report domain.HealthReport) {
	for _, check := range report.Checks {
		switch check.Status {
		case domain.HealthOK:
			okColor.Print("  ok    ")
		case domain.HealthWarn:
			moderateColor.Print("  warn  ")
		default:
			criticalColor.Print("  fail  ")
		}
		fmt.Printf("%s: %s\n", check.Name, check.Details)
	}
}

func statusLabel(status domain.IssueStatus) string {
	switch status {
	case domain.StatusRemediated:
		return okColor.Sprint(string(status))
	case domain.StatusIgnored:
		return dimColor.Sprint(string(status))
	default:
		return moderateColor.Sprint(string(status))
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}
