package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// Pointer fields distinguish "absent" from "empty"; a response missing a
// required field is malformed, not a partially-populated issue.
type wireIssue struct {
	Title       *string  `json:"title"`
	Description string   `json:"description"`
	Severity    *string  `json:"severity"`
	Commands    []string `json:"commands"`
	Excerpt     string   `json:"excerpt"`
}

type wireAnalysis struct {
	Issues  []wireIssue `json:"issues"`
	Summary string      `json:"summary"`
}

// parseAnalysis enforces the structured-output contract. An unknown severity
// value defaults to Moderate with a logged warning, never silently promoted
// to Critical.
func parseAnalysis(content string, log ports.Logger) (domain.Analysis, error) {
	var wire wireAnalysis
	if err := json.Unmarshal([]byte(stripFences(content)), &wire); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Issues == nil {
		return domain.Analysis{}, fmt.Errorf("%w: missing issues field", ErrMalformedResponse)
	}

	analysis := domain.Analysis{
		Issues:  make([]domain.Issue, 0, len(wire.Issues)),
		Summary: strings.TrimSpace(wire.Summary),
	}
	for i, w := range wire.Issues {
		if w.Title == nil || strings.TrimSpace(*w.Title) == "" {
			return domain.Analysis{}, fmt.Errorf("%w: issue %d missing title", ErrMalformedResponse, i)
		}
		if w.Severity == nil {
			return domain.Analysis{}, fmt.Errorf("%w: issue %d missing severity", ErrMalformedResponse, i)
		}
		severity, known := domain.ParseSeverity(*w.Severity)
		if !known {
			log.Warn("unknown severity from model, defaulting to moderate", map[string]interface{}{
				"severity": *w.Severity,
				"title":    *w.Title,
			})
		}

		title := strings.TrimSpace(*w.Title)
		issue := domain.Issue{
			Fingerprint: domain.ComputeFingerprint(title, w.Excerpt),
			Title:       title,
			Description: strings.TrimSpace(w.Description),
			Severity:    severity,
			Commands:    cleanCommands(w.Commands),
			Excerpt:     strings.TrimSpace(w.Excerpt),
		}
		analysis.Issues = append(analysis.Issues, issue)
	}
	return analysis, nil
}

// stripFences unwraps a ```json code fence if the model added one.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

func cleanCommands(commands []string) []string {
	cleaned := make([]string, 0, len(commands))
	for _, cmd := range commands {
		if cmd = strings.TrimSpace(cmd); cmd != "" {
			cleaned = append(cleaned, cmd)
		}
	}
	return cleaned
}
