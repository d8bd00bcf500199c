package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pracare/backend/internal/domain"
)

const (
	maxMessageLength = 1000
	sessionTitleMax  = 50
)

var (
	// ErrInvalidMessage indicates an empty or over-length message body.
	ErrInvalidMessage = errors.New("message must be between 1 and 1000 characters")
	// ErrSessionNotFound indicates a missing session or one owned by
	// another user. The two cases are deliberately indistinguishable.
	ErrSessionNotFound = errors.New("session not found")
)

// SendMessage runs one chat turn: persist the user's message, ask the
// gateway for a reply, persist it, and bump the session's activity. The
// turn succeeds even when the gateway degrades; the assistant message then
// carries the fallback text.
func (s *Service) SendMessage(ctx context.Context, user *domain.User, req *domain.SendMessageRequest) (*domain.SendMessageResponse, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" || len([]rune(content)) > maxMessageLength {
		return nil, ErrInvalidMessage
	}

	session, err := s.resolveSession(ctx, user, req.SessionID, content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := &domain.Message{
		MessageID: uuid.New().String(),
		SessionID: session.SessionID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	history, err := s.store.GetMessages(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	reply := s.gateway.GenerateReply(ctx, history)

	assistantMessage := &domain.Message{
		MessageID: uuid.New().String(),
		SessionID: session.SessionID,
		Role:      domain.RoleAssistant,
		Content:   reply.Content,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMessage(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if err := s.store.TouchSession(ctx, session.SessionID, assistantMessage.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &domain.SendMessageResponse{
		SessionID: session.SessionID,
		UserMessage: domain.MessagePayload{
			MessageID: userMessage.MessageID,
			Content:   userMessage.Content,
			Timestamp: userMessage.CreatedAt,
		},
		AIResponse: domain.MessagePayload{
			MessageID: assistantMessage.MessageID,
			Content:   assistantMessage.Content,
			Timestamp: assistantMessage.CreatedAt,
		},
		Degraded: reply.Degraded,
	}, nil
}

// resolveSession loads the caller's session or creates a fresh one titled
// from the first message.
func (s *Service) resolveSession(ctx context.Context, user *domain.User, sessionID, firstMessage string) (*domain.Session, error) {
	if sessionID != "" {
		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil || session.UserID != user.UserID {
			return nil, ErrSessionNotFound
		}
		return session, nil
	}

	now := time.Now()
	session := &domain.Session{
		SessionID: uuid.New().String(),
		UserID:    user.UserID,
		Title:     sessionTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// sessionTitle derives a session title from its first message, truncated
// with an ellipsis marker when over the limit.
func sessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) > sessionTitleMax {
		return string(runes[:sessionTitleMax]) + "..."
	}
	return message
}

// ListSessions returns the user's sessions, most recently active first.
func (s *Service) ListSessions(ctx context.Context, user *domain.User) ([]domain.Session, error) {
	sessions, err := s.store.ListSessions(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// CreateSession explicitly creates an empty session with a sequential
// placeholder title.
func (s *Service) CreateSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	count, err := s.store.CountSessions(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		SessionID: uuid.New().String(),
		UserID:    user.UserID,
		Title:     fmt.Sprintf("Chat Session - %d", count+1),
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession returns one of the user's sessions with its messages in
// ascending creation order.
func (s *Service) GetSession(ctx context.Context, user *domain.User, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.UserID != user.UserID {
		return nil, ErrSessionNotFound
	}

	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	session.Messages = messages
	session.MessageCount = len(messages)
	return session, nil
}
