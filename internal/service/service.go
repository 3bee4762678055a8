package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/config"
	"github.com/Marga-Ghale/ora-chat-backend/internal/notification"
	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrBadRequest         = errors.New("bad request")
)

// Notifier delivers an event to every live connection of a user.
type Notifier interface {
	Dispatch(target string, ev notification.Event) notification.Report
}

// OnlineLister lists users that currently hold a connection.
type OnlineLister interface {
	OnlineUsers() []presence.UserID
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth       AuthService
	User       UserService
	Group      GroupService
	Invitation InvitationService
	Message    MessageService
	Admin      AdminService
	Audit      *AuditLogger
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Notifier Notifier
	Presence OnlineLister
	Logger   *zap.Logger

	// Clock defaults to time.Now
	Clock func() time.Time
}

func NewServices(deps *ServiceDeps) *Services {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	audit := NewAuditLogger(deps.Repos.AuditLogRepo, log)

	return &Services{
		Auth:  NewAuthService(deps.Config, deps.Repos.UserRepo, audit),
		User:  NewUserService(deps.Repos.UserRepo),
		Group: NewGroupService(deps.Repos.GroupRepo, audit, clock),
		Invitation: NewInvitationService(
			deps.Repos.GroupRepo,
			deps.Repos.UserRepo,
			deps.Repos.MembershipRepo,
			deps.Notifier,
			audit,
			log,
			clock,
		),
		Message: NewMessageService(
			deps.Repos.MessageRepo,
			deps.Repos.UserRepo,
			deps.Notifier,
			audit,
		),
		Admin: NewAdminService(
			deps.Repos.UserRepo,
			deps.Repos.MessageRepo,
			deps.Repos.AuditLogRepo,
			deps.Presence,
		),
		Audit: audit,
	}
}
