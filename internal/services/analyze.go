// Package services orchestrates the triage pipeline end-to-end.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// AnalyzeService runs one analysis session: capture the boot window, extract
// issues, record them as seen, and filter out anything already handled.
type AnalyzeService struct {
	Capturer  ports.LogCapturer
	Extractor ports.IssueExtractor
	Store     ports.DedupStore
	Logger    ports.Logger
}

// Run processes a single session. Capture and extraction failures propagate
// as errors so the caller can render a distinct "analysis failed" state;
// store trouble degrades to an unfiltered issue list with a warning, never a
// crashed session.
func (s *AnalyzeService) Run(ctx context.Context) (domain.Session, error) {
	if s.Capturer == nil || s.Extractor == nil || s.Store == nil || s.Logger == nil {
		return domain.Session{}, errors.New("services.AnalyzeService dependencies not satisfied")
	}

	snapshot, err := s.Capturer.Capture(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("capture boot window: %w", err)
	}
	s.Logger.Info("boot window captured", map[string]interface{}{
		"bytes":     len(snapshot.Text),
		"truncated": snapshot.Truncated,
	})

	analysis, err := s.Extractor.Extract(ctx, snapshot)
	if err != nil {
		return domain.Session{}, fmt.Errorf("extract issues: %w", err)
	}
	domain.SortIssues(analysis.Issues)

	for _, issue := range analysis.Issues {
		if err := s.Store.RecordSeen(issue); err != nil {
			s.Logger.Warn("record seen failed", map[string]interface{}{
				"fingerprint": issue.Fingerprint,
				"error":       err.Error(),
			})
		}
	}

	filtered, err := s.Store.Filter(analysis.Issues)
	if err != nil {
		s.Logger.Warn("dedup filter unavailable, showing all issues", map[string]interface{}{"error": err.Error()})
		filtered = analysis.Issues
	}

	return domain.Session{
		ID:        uuid.NewString(),
		Snapshot:  snapshot,
		Extracted: analysis.Issues,
		Filtered:  filtered,
		Summary:   analysis.Summary,
	}, nil
}
