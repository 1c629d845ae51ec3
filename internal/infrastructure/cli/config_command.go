package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
)

func newConfigCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(container.ConfigLoader.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (credential redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("endpoint:              %s\n", cfg.Model.Endpoint)
			fmt.Printf("model:                 %s\n", cfg.Model.ModelID)
			fmt.Printf("api key:               %s\n", redact(cfg.Model.APIKey, cfg.Model.AuthEnvVar))
			fmt.Printf("timeout:               %ds\n", cfg.Model.TimeoutSeconds)
			fmt.Printf("capture max bytes:     %d\n", cfg.Capture.MaxBytes)
			fmt.Printf("dedup store:           %s\n", cfg.Store.Path)
			fmt.Printf("reopen on recurrence:  %t\n", cfg.Store.ReopenEnabled())
			fmt.Printf("guardrail rules:       %s\n", cfg.Security.RulesFile)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the model API key in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.Load(cmd.Context())
			if err != nil {
				return err
			}
			cfg.Model.APIKey = strings.TrimSpace(args[0])
			if err := container.ConfigLoader.Save(cfg); err != nil {
				return err
			}
			fmt.Println("API key saved.")
			return nil
		},
	})

	return cmd
}

func redact(key, envVar string) string {
	if key != "" {
		if len(key) <= 8 {
			return "********"
		}
		return key[:4] + "..." + key[len(key)-4:]
	}
	return fmt.Sprintf("(not set; falls back to $%s)", envVar)
}
