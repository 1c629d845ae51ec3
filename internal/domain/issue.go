// Package domain defines core business entities for bootlens.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures: issues flagged in the boot log,
// their deduplication records, and the remediation audit trail.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
)

// Severity ranks how urgently an issue needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// ParseSeverity maps a model-supplied severity string to a known level.
// The boolean reports whether the value was one of the four allowed levels.
func ParseSeverity(value string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(value))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityModerate:
		return SeverityModerate, true
	case SeverityLow:
		return SeverityLow, true
	default:
		return SeverityModerate, false
	}
}

// Rank orders severities for display, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Issue is a single finding extracted from the boot window. Immutable after
// creation within a session.
type Issue struct {
	Fingerprint string   `json:"fingerprint"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Commands    []string `json:"commands"`
	Excerpt     string   `json:"excerpt"`
}

// HasRemediation reports whether the model suggested at least one command.
func (i Issue) HasRemediation() bool {
	return len(i.Commands) > 0
}

// SortIssues orders issues by severity (critical first), then title.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].Severity.Rank() != issues[b].Severity.Rank() {
			return issues[a].Severity.Rank() < issues[b].Severity.Rank()
		}
		return issues[a].Title < issues[b].Title
	})
}

// Patterns stripped from log excerpts before fingerprinting. Timestamps,
// kernel uptime markers and PIDs vary between boots while the underlying
// condition stays the same.
var (
	isoTimestampRe    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:[+-]\d{2}:?\d{2}|Z)?`)
	syslogTimestampRe = regexp.MustCompile(`[A-Z][a-z]{2} [ \d]\d \d{2}:\d{2}:\d{2}`)
	kernelUptimeRe    = regexp.MustCompile(`\[\s*\d+\.\d+\]`)
	pidRe             = regexp.MustCompile(`\[\d+\]`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// ComputeFingerprint derives a stable identifier from the normalized issue
// title and the timestamp-independent signature of its log excerpt, so the
// same recurring condition maps to the same fingerprint across runs.
func ComputeFingerprint(title, excerpt string) string {
	sum := sha256.Sum256([]byte(normalizeText(title) + "\n" + logSignature(excerpt)))
	return hex.EncodeToString(sum[:16])
}

func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

func logSignature(excerpt string) string {
	excerpt = isoTimestampRe.ReplaceAllString(excerpt, "")
	excerpt = syslogTimestampRe.ReplaceAllString(excerpt, "")
	excerpt = kernelUptimeRe.ReplaceAllString(excerpt, "")
	excerpt = pidRe.ReplaceAllString(excerpt, "")
	return normalizeText(excerpt)
}
