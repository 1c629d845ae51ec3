// Package security evaluates model-suggested commands before execution.
package security

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// Guardrail implements the SecurityService port.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads guardrail rules from disk (or defaults when missing).
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	var compiled []compiledPattern
	for _, pattern := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}

	return &Guardrail{patterns: compiled}, nil
}

// NewDisabled returns a guardrail with no patterns: every command evaluates
// to safe/confirm. Confirmation itself is never skipped.
func NewDisabled() *Guardrail {
	return &Guardrail{}
}

// Evaluate implements ports.SecurityService. Every remediation command is
// confirmed regardless; the guardrail only escalates to explicit
// confirmation or blocks outright.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionConfirm,
	}
	highest := domain.RiskSafe
	for _, pattern := range g.patterns {
		if pattern.re.MatchString(command) {
			ruleLevel := parseRiskLevel(pattern.rule.Level)
			if moreSevere(ruleLevel, highest) {
				highest = ruleLevel
				assessment.Level = ruleLevel
				assessment.Action = parseAction(pattern.rule.Action, ruleLevel)
			}
			assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
			assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
		}
	}
	return assessment, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		// fall back to defaults
		rules.Rules.DangerPatterns = defaultPatterns()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		rules.Rules.DangerPatterns = defaultPatterns()
	}
	return rules, nil
}

func defaultPatterns() []DangerPattern {
	return []DangerPattern{
		{Pattern: `rm\s+(-[a-zA-Z]*\s+)*(/|/boot|/etc|/usr|/var)(\s|$)`, Level: "critical", Message: "recursive delete of a system path", Action: "block"},
		{Pattern: `\bmkfs(\.\w+)?\b`, Level: "critical", Message: "filesystem creation wipes the target device", Action: "block"},
		{Pattern: `\bdd\b.*\bof=/dev/`, Level: "critical", Message: "raw write to a block device", Action: "block"},
		{Pattern: `:\(\)\s*\{.*:\|:`, Level: "critical", Message: "fork bomb", Action: "block"},
		{Pattern: `\b(shutdown|reboot|poweroff)\b`, Level: "high", Message: "restarts or powers off the machine", Action: "explicit_confirm"},
		{Pattern: `systemctl\s+(mask|disable)\b`, Level: "medium", Message: "disables a system service", Action: "explicit_confirm"},
		{Pattern: `\bsudo\b`, Level: "medium", Message: "runs with elevated privileges (sudo will prompt)", Action: "confirm"},
		{Pattern: `>\s*/etc/`, Level: "high", Message: "overwrites a system configuration file", Action: "explicit_confirm"},
	}
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, level domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "block":
		return domain.ActionBlock
	case "explicit_confirm":
		return domain.ActionExplicitConfirm
	case "confirm":
		return domain.ActionConfirm
	}
	// no explicit action on the rule: escalate by level
	switch level {
	case domain.RiskCritical:
		return domain.ActionBlock
	case domain.RiskHigh:
		return domain.ActionExplicitConfirm
	default:
		return domain.ActionConfirm
	}
}

var severityOrder = map[domain.RiskLevel]int{
	domain.RiskSafe:     0,
	domain.RiskLow:      1,
	domain.RiskMedium:   2,
	domain.RiskHigh:     3,
	domain.RiskCritical: 4,
}

func moreSevere(a, b domain.RiskLevel) bool {
	return severityOrder[a] > severityOrder[b]
}

func expandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

var _ ports.SecurityService = (*Guardrail)(nil)
