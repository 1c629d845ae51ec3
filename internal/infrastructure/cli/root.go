// Package cli is the presentation adapter: it renders filtered issues and
// forwards confirm/decline/ignore/chat actions into the triage core.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. Running bootlens with no
// subcommand analyzes the current boot.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Remediate.Prompter = NewPrompter(nil, nil)

	analyzeCmd := newAnalyzeCommand(container)

	root := &cobra.Command{
		Use:   "bootlens",
		Short: "bootlens - boot log triage assistant",
		Long:  "bootlens captures this boot's journal, asks a remote model to triage it,\nand walks you through user-approved fixes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzeCmd.SetArgs(args)
			return analyzeCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(analyzeCmd)
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newIgnoreCommand(container))
	root.AddCommand(newReopenCommand(container))
	root.AddCommand(newChatCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newDoctorCommand(container))
	return root, nil
}
