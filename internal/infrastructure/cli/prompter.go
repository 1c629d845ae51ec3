package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout. Execution
// only ever starts on an explicit affirmative answer.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm shows the command sequence and its risk verdict, then asks for
// approval. High-risk sequences require typing "yes" in full.
func (p *Prompter) Confirm(issue domain.Issue, risk domain.RiskAssessment) (bool, error) {
	fmt.Fprintf(p.out, "\nAbout to run for %q:\n", issue.Title)
	for i, command := range issue.Commands {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, command)
	}
	if risk.Level != domain.RiskSafe {
		warnColor := color.New(color.FgYellow, color.Bold)
		warnColor.Fprintf(p.out, "Risk: %s\n", strings.ToUpper(string(risk.Level)))
		for _, reason := range risk.Reasons {
			fmt.Fprintf(p.out, " - %s\n", reason)
		}
	}

	if risk.Action == domain.ActionExplicitConfirm {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Run it? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to confirm (or anything else to cancel): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
