package services

import (
	"context"
	"fmt"
	"os"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// DoctorService runs environment diagnostics.
type DoctorService struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.DedupStore
	Security       ports.SecurityService
	// JournalCheck probes the log backend; injected so tests need no journalctl.
	JournalCheck func() error
}

// Run executes checks and returns a report.
func (s *DoctorService) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))

	if s.JournalCheck != nil {
		if err := s.JournalCheck(); err != nil {
			checks = append(checks, fail("Journal backend", err.Error()))
		} else {
			checks = append(checks, ok("Journal backend", "journalctl available"))
		}
	}

	checks = append(checks, credentialCheck(cfg.Model))

	if s.Store != nil {
		if records, err := s.Store.Records(1); err != nil {
			checks = append(checks, warn("Dedup store", err.Error()))
		} else if len(records) == 0 {
			checks = append(checks, ok("Dedup store", "reachable, no history yet"))
		} else {
			checks = append(checks, ok("Dedup store", "reachable"))
		}
	} else {
		checks = append(checks, warn("Dedup store", "not initialized"))
	}

	if s.Security != nil {
		if _, err := s.Security.Evaluate("true"); err != nil {
			checks = append(checks, fail("Guardrail", err.Error()))
		} else {
			checks = append(checks, ok("Guardrail", "rules loaded"))
		}
	} else {
		checks = append(checks, warn("Guardrail", "security service not initialized"))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func credentialCheck(model domain.ModelSettings) domain.HealthCheck {
	if model.APIKey != "" {
		return ok("Model credential", "api_key set in config")
	}
	if model.AuthEnvVar != "" && os.Getenv(model.AuthEnvVar) != "" {
		return ok("Model credential", fmt.Sprintf("%s set", model.AuthEnvVar))
	}
	if os.Getenv("OPENROUTER_API_KEY") != "" {
		return ok("Model credential", "OPENROUTER_API_KEY set")
	}
	return fail("Model credential", "no API key in config or environment; run `bootlens config set-key`")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
