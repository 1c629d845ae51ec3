package ai

import (
	"fmt"
	"strings"

	"github.com/doeshing/bootlens/internal/domain"
)

// analysisSystemPrompt fixes the response schema so parsing stays
// deterministic regardless of model phrasing. Severity assignment is the
// model's responsibility; the client only validates it.
const analysisSystemPrompt = `You are a Linux system administrator expert analyzing boot logs from a desktop system.

Your task is to identify ONLY significant issues that require user attention. Be conservative - don't flag:
- Normal informational messages
- Warnings that are expected/benign
- Hardware detection messages that completed successfully
- Services that started correctly

DO flag:
- Failed services or units
- Hardware errors or failures
- Security-related warnings
- Disk/filesystem errors
- Network configuration failures
- GPU/driver issues that prevent functionality
- Memory or resource exhaustion warnings

Respond with JSON only, no prose around it:
{
  "issues": [
    {
      "title": "brief description of the issue",
      "description": "why this is an issue and its impact",
      "severity": "critical|high|moderate|low",
      "commands": ["shell command to fix it", "next command if needed"],
      "excerpt": "the exact log lines (1-5 lines) that indicate this issue"
    }
  ],
  "summary": "one sentence overall assessment"
}

Severity levels:
- "critical": failures requiring immediate attention (failed essential services, data loss risk)
- "high": broken functionality that should be addressed soon
- "moderate": issues that may escalate or degrade the experience
- "low": minor issues that can wait

Commands must be ordered: later commands may depend on earlier ones.
If no significant issues are found, return {"issues": [], "summary": "No significant issues detected in boot logs."}`

const chatSystemPrompt = `You are a helpful Linux system administrator assistant. You have access to the user's boot logs and are helping them diagnose and fix issues.

When suggesting commands:
- Provide clear, step-by-step instructions
- Explain what each command does
- Warn about any risks or side effects
- Prefer safe, reversible actions

Be concise but thorough. Focus on practical solutions.`

func buildAnalysisMessages(snapshot domain.LogSnapshot) []chatMessage {
	var b strings.Builder
	b.WriteString("Analyze these boot logs and identify any significant issues:\n\n")
	b.WriteString("## Boot Logs (journalctl)\n```\n")
	b.WriteString(snapshot.Text)
	b.WriteString("\n```\n")
	if snapshot.FailedUnits != "" {
		b.WriteString("\n## Failed Services (systemctl --failed)\n```\n")
		b.WriteString(snapshot.FailedUnits)
		b.WriteString("\n```\n")
	}
	b.WriteString("\nRemember: only flag genuine issues that need attention. Be conservative.")

	return []chatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func buildChatMessages(snapshot domain.LogSnapshot, issue *domain.Issue, history []domain.ChatTurn, message string) []chatMessage {
	var ctx strings.Builder
	ctx.WriteString("Here is the context for our conversation:\n\n## Boot Logs\n```\n")
	ctx.WriteString(snapshot.Text)
	ctx.WriteString("\n```\n")
	if issue != nil {
		fmt.Fprintf(&ctx, `
## Current Issue Being Discussed
- **Title**: %s
- **Severity**: %s
- **Details**: %s
- **Log Excerpt**: %s
- **Suggested Commands**: %s
`, issue.Title, issue.Severity, issue.Description, issue.Excerpt, strings.Join(issue.Commands, "; "))
	}
	ctx.WriteString("\nPlease acknowledge you have this context.")

	messages := []chatMessage{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: ctx.String()},
		{Role: "assistant", Content: "I have the boot logs and issue context. I'm ready to help you diagnose and fix any problems. What would you like to know?"},
	}
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, chatMessage{Role: "user", Content: message})
}
