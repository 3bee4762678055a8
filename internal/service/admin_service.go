package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

const (
	adminMessageLimit = 500
	adminLogLimit     = 200
)

type AdminService interface {
	ListUsers(ctx context.Context) ([]*repository.User, error)
	ListMessages(ctx context.Context) ([]*repository.Message, error)
	ListAuditLogs(ctx context.Context) ([]*repository.AuditLog, error)
	OnlineUsers() []string
}

type adminService struct {
	userRepo     repository.UserRepository
	messageRepo  repository.MessageRepository
	auditLogRepo repository.AuditLogRepository
	presence     OnlineLister
}

func NewAdminService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	auditLogRepo repository.AuditLogRepository,
	presence OnlineLister,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		auditLogRepo: auditLogRepo,
		presence:     presence,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]*repository.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*repository.User{}
	}
	return users, nil
}

func (s *adminService) ListMessages(ctx context.Context) ([]*repository.Message, error) {
	messages, err := s.messageRepo.FindAll(ctx, adminMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context) ([]*repository.AuditLog, error) {
	logs, err := s.auditLogRepo.FindRecent(ctx, adminLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (s *adminService) OnlineUsers() []string {
	out := []string{}
	if s.presence == nil {
		return out
	}
	for _, u := range s.presence.OnlineUsers() {
		out = append(out, string(u))
	}
	sort.Strings(out)
	return out
}
