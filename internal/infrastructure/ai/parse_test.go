package ai

import (
	"errors"
	"testing"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/pkg/logger"
)

const goodAnalysis = `{
	"issues": [
		{
			"title": "NetworkManager failed to start",
			"description": "The unit entered a failed state during boot.",
			"severity": "high",
			"commands": ["systemctl restart NetworkManager", "  ", "journalctl -u NetworkManager"],
			"excerpt": "systemd[1]: Failed to start Network Manager."
		},
		{
			"title": "bluetooth firmware missing",
			"description": "",
			"severity": "low",
			"commands": [],
			"excerpt": "bluetooth hci0: Direct firmware load failed"
		}
	],
	"summary": "One service failure and one missing firmware."
}`

func TestParseAnalysis(t *testing.T) {
	analysis, err := parseAnalysis(goodAnalysis, logger.NewStd(false))
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if len(analysis.Issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(analysis.Issues))
	}

	first := analysis.Issues[0]
	if first.Severity != domain.SeverityHigh {
		t.Errorf("severity = %s, want %s", first.Severity, domain.SeverityHigh)
	}
	if len(first.Commands) != 2 {
		t.Errorf("blank command not dropped: %v", first.Commands)
	}
	if first.Fingerprint == "" {
		t.Error("fingerprint not computed")
	}
	if analysis.Summary != "One service failure and one missing firmware." {
		t.Errorf("summary = %q", analysis.Summary)
	}
}

func TestParseAnalysisStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + goodAnalysis + "\n```"
	analysis, err := parseAnalysis(fenced, logger.NewStd(false))
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if len(analysis.Issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(analysis.Issues))
	}
}

func TestParseAnalysisEmptyIssuesIsClean(t *testing.T) {
	analysis, err := parseAnalysis(`{"issues": [], "summary": "No problems found."}`, logger.NewStd(false))
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if len(analysis.Issues) != 0 {
		t.Fatalf("got %d issues, want 0", len(analysis.Issues))
	}
}

func TestParseAnalysisMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose instead of json", "Everything looks fine to me!"},
		{"missing issues field", `{"summary": "ok"}`},
		{"issue without title", `{"issues": [{"severity": "high", "excerpt": "x"}]}`},
		{"issue without severity", `{"issues": [{"title": "t", "excerpt": "x"}]}`},
		{"blank title", `{"issues": [{"title": "  ", "severity": "high"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnalysis(tt.content, logger.NewStd(false))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestParseAnalysisUnknownSeverityDefaultsToModerate(t *testing.T) {
	content := `{"issues": [{"title": "odd issue", "severity": "catastrophic", "excerpt": "boom"}]}`
	analysis, err := parseAnalysis(content, logger.NewStd(false))
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if analysis.Issues[0].Severity != domain.SeverityModerate {
		t.Fatalf("severity = %s, want %s (never promoted to critical)", analysis.Issues[0].Severity, domain.SeverityModerate)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.input); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
