package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// ChatService forwards free-text follow-up questions, plus snapshot context,
// to the model channel for a chat-style continuation.
type ChatService struct {
	Provider ports.ChatProvider
	Logger   ports.Logger
}

// Ask sends one message and appends both turns to the session history on
// success. Failed turns are not recorded so a retry sends a clean history.
func (s *ChatService) Ask(ctx context.Context, session *domain.Session, issue *domain.Issue, message string) (string, error) {
	if s.Provider == nil || s.Logger == nil {
		return "", errors.New("services.ChatService dependencies not satisfied")
	}

	reply, err := s.Provider.Chat(ctx, session.Snapshot, issue, session.Chat, message)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	session.Chat = append(session.Chat,
		domain.ChatTurn{Role: "user", Content: message},
		domain.ChatTurn{Role: "assistant", Content: reply},
	)
	return reply, nil
}
