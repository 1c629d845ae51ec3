package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
	"github.com/doeshing/bootlens/internal/domain"
)

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that bootlens can capture, analyze, and record",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Doctor.Run(cmd.Context())
			renderHealthReport(report)
			if err != nil {
				return err
			}
			for _, check := range report.Checks {
				if check.Status == domain.HealthError {
					return fmt.Errorf("doctor found problems")
				}
			}
			return nil
		},
	}
}
