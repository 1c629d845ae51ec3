package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/infrastructure/ai"
	"github.com/doeshing/bootlens/internal/infrastructure/capture"
)

func newAnalyzeCommand(container *app.Container) *cobra.Command {
	var (
		previewOnly bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze this boot's logs and walk through suggested fixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			s.Suffix = " analyzing boot logs..."
			s.Start()
			session, err := container.Analyze.Run(ctx)
			s.Stop()
			if err != nil {
				// Analysis failed: visibly different from "zero issues found".
				criticalColor.Println("Analysis failed - no report was produced.")
				fmt.Println(describeAnalysisFailure(err))
				return err
			}

			renderSessionHeader(session)

			if len(session.Filtered) == 0 {
				okColor.Println("No new issues found in this boot window.")
				return nil
			}

			if previewOnly {
				for i, issue := range session.Filtered {
					renderIssue(i, len(session.Filtered), issue)
					fmt.Println()
				}
				return nil
			}

			return runIssueLoop(ctx, container, &session)
		},
	}

	cmd.Flags().BoolVar(&previewOnly, "preview", false, "list issues without offering to run fixes")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall session timeout (0 = model timeout only)")
	return cmd
}

// runIssueLoop walks the filtered issues one by one, forwarding the user's
// per-issue action into the remediation machine, the dedup store, or the
// chat channel.
func runIssueLoop(ctx context.Context, container *app.Container, session *domain.Session) error {
	reader := bufio.NewReader(os.Stdin)

	for i, issue := range session.Filtered {
		fmt.Println()
		renderIssue(i, len(session.Filtered), issue)

	actions:
		for {
			fmt.Print(actionPrompt(issue))
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}

			switch strings.ToLower(strings.TrimSpace(line)) {
			case "r", "run":
				if !issue.HasRemediation() {
					fmt.Println("nothing to run for this issue")
					continue
				}
				result, err := container.Remediate.Remediate(ctx, issue)
				if err != nil {
					return err
				}
				renderRemediationResult(result)
				break actions
			case "i", "ignore":
				if err := container.Store.Ignore(issue.Fingerprint); err != nil {
					return err
				}
				dimColor.Println("Ignored; `bootlens reopen " + issue.Fingerprint + "` brings it back.")
				break actions
			case "d", "discuss":
				if err := discussIssue(ctx, container, session, issue, reader); err != nil {
					return err
				}
			case "q", "quit":
				return nil
			case "", "s", "skip":
				break actions
			default:
				fmt.Println("unrecognized choice")
			}
		}
	}

	fmt.Println()
	dimColor.Println("Done. Unactioned issues stay open and will resurface next run.")
	return nil
}

func actionPrompt(issue domain.Issue) string {
	if issue.HasRemediation() {
		return "\n[r]un fix  [s]kip  [i]gnore  [d]iscuss  [q]uit: "
	}
	return "\n[s]kip  [i]gnore  [d]iscuss  [q]uit: "
}

func discussIssue(ctx context.Context, container *app.Container, session *domain.Session, issue domain.Issue, reader *bufio.Reader) error {
	fmt.Println("Ask about this issue (empty line to go back):")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		question := strings.TrimSpace(line)
		if question == "" {
			return nil
		}

		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		s.Start()
		reply, err := container.Chat.Ask(ctx, session, &issue, question)
		s.Stop()
		if err != nil {
			highColor.Printf("chat failed: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

func describeAnalysisFailure(err error) string {
	switch {
	case errors.Is(err, capture.ErrUnavailable):
		return "The boot journal could not be read. Check that journalctl works for your user (systemd-journal group membership)."
	case errors.Is(err, ai.ErrUnauthorized):
		return "The model endpoint rejected the credential. Set one with `bootlens config set-key` or export OPENROUTER_API_KEY."
	case errors.Is(err, ai.ErrMalformedResponse):
		return "The model reply did not match the expected schema. Re-run the analysis; persistent failures may need a different model."
	case errors.Is(err, ai.ErrTransport):
		return "The model endpoint could not be reached. Check network connectivity and the configured endpoint."
	default:
		return "Unexpected failure; re-run with BOOTLENS_DEBUG=1 for details."
	}
}
