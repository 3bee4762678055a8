package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Marga-Ghale/ora-chat-backend/internal/notification"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

const maxMessageLength = 4000

type MessageService interface {
	Send(ctx context.Context, authUserID, senderID, receiverID, content string) (*repository.Message, error)
	ListForReceiver(ctx context.Context, requesterID, receiverID string) ([]*repository.Message, error)
	Delete(ctx context.Context, requesterID, messageID string) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	audit       *AuditLogger
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	audit *AuditLogger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		audit:       audit,
	}
}

func (s *messageService) Send(ctx context.Context, authUserID, senderID, receiverID, content string) (*repository.Message, error) {
	if senderID != authUserID {
		return nil, fmt.Errorf("%w: cannot send as another user", ErrForbidden)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrBadRequest, maxMessageLength)
	}

	for _, id := range []string{senderID, receiverID} {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
	}

	msg := &repository.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.audit.Record(ctx, LevelInfo, "messages", senderID,
		fmt.Sprintf("private message %s from %s to %s", msg.ID, senderID, receiverID))
	if s.notifier != nil {
		s.notifier.Dispatch(receiverID, notification.ReceivePrivateMessage(senderID, content))
	}
	return msg, nil
}

func (s *messageService) ListForReceiver(ctx context.Context, requesterID, receiverID string) ([]*repository.Message, error) {
	if requesterID != receiverID {
		if err := s.requireAdmin(ctx, requesterID); err != nil {
			return nil, err
		}
	}
	messages, err := s.messageRepo.FindByReceiver(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if messages == nil {
		messages = []*repository.Message{}
	}
	return messages, nil
}

func (s *messageService) Delete(ctx context.Context, requesterID, messageID string) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("%w: message %s", ErrNotFound, messageID)
	}
	if msg.SenderID != requesterID && msg.ReceiverID != requesterID {
		if err := s.requireAdmin(ctx, requesterID); err != nil {
			return err
		}
	}
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	s.audit.Record(ctx, LevelInfo, "messages", requesterID, "deleted message "+messageID)
	return nil
}

func (s *messageService) requireAdmin(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}
