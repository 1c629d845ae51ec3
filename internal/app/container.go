package app

import (
	"context"

	"github.com/doeshing/bootlens/internal/infrastructure/ai"
	"github.com/doeshing/bootlens/internal/infrastructure/capture"
	"github.com/doeshing/bootlens/internal/infrastructure/config"
	"github.com/doeshing/bootlens/internal/infrastructure/dedup"
	"github.com/doeshing/bootlens/internal/infrastructure/executor"
	"github.com/doeshing/bootlens/internal/infrastructure/security"
	"github.com/doeshing/bootlens/internal/pkg/logger"
	"github.com/doeshing/bootlens/internal/ports"
	"github.com/doeshing/bootlens/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       ports.ConfigProvider
	ConfigLoader *config.FileLoader
	Store        ports.DedupStore
	Capturer     ports.LogCapturer
	Logger       ports.Logger

	Analyze   *services.AnalyzeService
	Remediate *services.RemediationService
	Chat      *services.ChatService
	Doctor    *services.DoctorService
}

// BuildContainer constructs the dependency graph. The confirmation prompter
// is attached by the CLI layer, which owns stdio.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	store, err := dedup.NewSQLiteStore(cfg.Store.Path, cfg.Store.ReopenEnabled(), log)
	if err != nil {
		return nil, err
	}

	var guardrail *security.Guardrail
	if cfg.Security.GuardrailEnabled() {
		guardrail, err = security.NewGuardrail(cfg.Security.RulesFile)
		if err != nil {
			log.Warn("guardrail rules unreadable, using built-in defaults", map[string]interface{}{"error": err.Error()})
			if guardrail, err = security.NewGuardrail(""); err != nil {
				return nil, err
			}
		}
	} else {
		guardrail = security.NewDisabled()
	}

	client := ai.NewClient(cfg.Model, log)
	capturer := capture.NewJournalCapturer(cfg.Capture, log)
	runner := executor.NewShellRunner(cfg.Execution.Shell, cfg.Execution.ExcerptBytes)

	return &Container{
		Config:       cfgLoader,
		ConfigLoader: cfgLoader,
		Store:        store,
		Capturer:     capturer,
		Logger:       log,
		Analyze: &services.AnalyzeService{
			Capturer:  capturer,
			Extractor: client,
			Store:     store,
			Logger:    log,
		},
		Remediate: &services.RemediationService{
			Runner:   runner,
			Store:    store,
			Security: guardrail,
			Logger:   log,
		},
		Chat: &services.ChatService{
			Provider: client,
			Logger:   log,
		},
		Doctor: &services.DoctorService{
			ConfigProvider: cfgLoader,
			Store:          store,
			Security:       guardrail,
			JournalCheck:   capture.Available,
		},
	}, nil
}

// Close releases long-lived resources.
func (c *Container) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}
