package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/notification"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

// InvitationService runs the group invitation workflow. Every operation checks
// authorization, applies the membership transition, persists it and only then
// notifies the interested user. Notification outcome never affects the result.
type InvitationService interface {
	Invite(ctx context.Context, requesterID, groupID, targetUserID string) (*membership.Membership, error)
	Respond(ctx context.Context, userID, groupID string, accept bool) (*membership.Membership, error)
	Decline(ctx context.Context, userID, groupID string) (*membership.Membership, error)
	CancelInvite(ctx context.Context, requesterID, groupID, targetUserID string) (*membership.Membership, error)
	History(ctx context.Context, userID string, sentByMe bool) ([]*repository.Invitation, error)
}

type invitationService struct {
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	notifier       Notifier
	audit          *AuditLogger
	log            *zap.Logger
	now            func() time.Time
}

func NewInvitationService(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	notifier Notifier,
	audit *AuditLogger,
	log *zap.Logger,
	now func() time.Time,
) InvitationService {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &invitationService{
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		notifier:       notifier,
		audit:          audit,
		log:            log.Named("invitations"),
		now:            now,
	}
}

func (s *invitationService) Invite(ctx context.Context, requesterID, groupID, targetUserID string) (*membership.Membership, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.OwnerID != requesterID {
		requester, err := s.userRepo.FindByID(ctx, requesterID)
		if err != nil {
			return nil, fmt.Errorf("failed to load requester: %w", err)
		}
		if requester == nil || !requester.IsAdmin {
			return nil, fmt.Errorf("%w: only the group owner or an admin can invite", ErrForbidden)
		}
	}

	target, err := s.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target user: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: target user %s", ErrNotFound, targetUserID)
	}

	existing, err := s.membershipRepo.FindByGroupAndUser(ctx, groupID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already invited or is a member", ErrConflict)
	}

	m := membership.New(groupID, targetUserID, s.now())
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user already invited or is a member", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.audit.Record(ctx, LevelInfo, "invitations", requesterID,
		fmt.Sprintf("invited %s to group %s", targetUserID, groupID))
	s.notify(targetUserID, notification.GroupInviteReceived(group.ID, group.Name))
	return m, nil
}

func (s *invitationService) Respond(ctx context.Context, userID, groupID string, accept bool) (*membership.Membership, error) {
	m, err := s.membershipRepo.FindByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: invite not found", ErrNotFound)
	}
	if m.Status == membership.Approved {
		return nil, fmt.Errorf("%w: already a member", ErrBadRequest)
	}

	if err := s.transition(ctx, m, membership.ResponseAction(accept)); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, LevelInfo, "invitations", userID,
		fmt.Sprintf("responded %s to group %s", m.Status, groupID))

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil || group == nil {
		// The write already succeeded; without the group there is no owner to tell.
		s.log.Warn("group lookup after respond failed",
			zap.String("group", groupID), zap.Error(err))
		return m, nil
	}
	s.notify(group.OwnerID, notification.GroupMemberResponded(groupID, userID, m.Status))
	return m, nil
}

func (s *invitationService) Decline(ctx context.Context, userID, groupID string) (*membership.Membership, error) {
	return s.Respond(ctx, userID, groupID, false)
}

func (s *invitationService) CancelInvite(ctx context.Context, requesterID, groupID, targetUserID string) (*membership.Membership, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the group owner can cancel invites", ErrForbidden)
	}

	m, err := s.membershipRepo.FindByGroupAndUser(ctx, groupID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: invite not found", ErrNotFound)
	}
	if m.Status == membership.Approved {
		return nil, fmt.Errorf("%w: user already a member", ErrBadRequest)
	}

	if err := s.transition(ctx, m, membership.Cancel); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, LevelInfo, "invitations", requesterID,
		fmt.Sprintf("cancelled invite of %s to group %s", targetUserID, groupID))
	s.notify(targetUserID, notification.GroupInviteCancelled(groupID))
	return m, nil
}

func (s *invitationService) History(ctx context.Context, userID string, sentByMe bool) ([]*repository.Invitation, error) {
	var (
		invitations []*repository.Invitation
		err         error
	)
	if sentByMe {
		invitations, err = s.membershipRepo.ListByOwner(ctx, userID)
	} else {
		invitations, err = s.membershipRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation history: %w", err)
	}
	if invitations == nil {
		invitations = []*repository.Invitation{}
	}
	return invitations, nil
}

func (s *invitationService) findGroup(ctx context.Context, groupID string) (*repository.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return group, nil
}

// transition applies action to m and persists it guarded by m's previous status.
// A concurrent writer that got there first surfaces as ErrInvalidTransition.
func (s *invitationService) transition(ctx context.Context, m *membership.Membership, action membership.Action) error {
	prev := m.Status
	updated := *m
	if err := updated.Apply(action, s.now()); err != nil {
		return err
	}

	if err := s.membershipRepo.UpdateStatus(ctx, &updated, prev); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return fmt.Errorf("%w: membership changed concurrently", membership.ErrInvalidTransition)
		}
		return fmt.Errorf("failed to update membership: %w", err)
	}

	*m = updated
	return nil
}

func (s *invitationService) notify(target string, ev notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(target, ev)
}
