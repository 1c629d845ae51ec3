package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
	"github.com/doeshing/bootlens/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [fingerprint]",
		Short: "Show recorded issues and their remediation attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				record, found, err := container.Store.Record(args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no record for fingerprint %s", args[0])
				}
				renderRecordDetail(record)
				return nil
			}

			records, err := container.Store.Records(limit)
			if err != nil {
				return err
			}
			renderRecords(records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "maximum records to list (0 = all)")
	return cmd
}

func newIgnoreCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <fingerprint>",
		Short: "Permanently suppress an issue until reopened",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Store.Ignore(args[0]); err != nil {
				return err
			}
			fmt.Printf("Ignored %s\n", args[0])
			return nil
		},
	}
}

func newReopenCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <fingerprint>",
		Short: "Re-open an ignored or remediated issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Store.Reopen(args[0]); err != nil {
				return err
			}
			fmt.Printf("Reopened %s\n", args[0])
			return nil
		},
	}
}
