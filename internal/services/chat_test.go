package services

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/pkg/logger"
)

type stubChat struct {
	reply string
	err   error
	got   struct {
		history []domain.ChatTurn
		message string
	}
}

func (s *stubChat) Chat(_ context.Context, _ domain.LogSnapshot, _ *domain.Issue, history []domain.ChatTurn, message string) (string, error) {
	s.got.history = history
	s.got.message = message
	return s.reply, s.err
}

func TestChatAskAppendsBothTurns(t *testing.T) {
	provider := &stubChat{reply: "The unit failed because of a missing dependency."}
	svc := &ChatService{Provider: provider, Logger: logger.NewStd(false)}
	session := &domain.Session{Snapshot: snapshotFixture()}

	reply, err := svc.Ask(context.Background(), session, nil, "why did it fail?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply != provider.reply {
		t.Fatalf("reply = %q", reply)
	}
	if len(session.Chat) != 2 {
		t.Fatalf("history length = %d, want 2", len(session.Chat))
	}
	if session.Chat[0].Role != "user" || session.Chat[0].Content != "why did it fail?" {
		t.Errorf("user turn = %+v", session.Chat[0])
	}
	if session.Chat[1].Role != "assistant" {
		t.Errorf("assistant turn = %+v", session.Chat[1])
	}

	// A second question carries the earlier turns.
	if _, err := svc.Ask(context.Background(), session, nil, "how do I fix it?"); err != nil {
		t.Fatal(err)
	}
	if len(provider.got.history) != 2 {
		t.Fatalf("history not threaded, got %d turns", len(provider.got.history))
	}
	if len(session.Chat) != 4 {
		t.Fatalf("history length = %d, want 4", len(session.Chat))
	}
}

func TestChatAskFailedTurnNotRecorded(t *testing.T) {
	provider := &stubChat{err: errors.New("model offline")}
	svc := &ChatService{Provider: provider, Logger: logger.NewStd(false)}
	session := &domain.Session{Snapshot: snapshotFixture()}

	if _, err := svc.Ask(context.Background(), session, nil, "hello?"); err == nil {
		t.Fatal("expected an error")
	}
	if len(session.Chat) != 0 {
		t.Fatalf("failed turn leaked into history: %+v", session.Chat)
	}
}
