package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

const maxGroupNameLength = 100

// GroupDetails is a group with its member list.
type GroupDetails struct {
	*repository.Group
	Members []*repository.GroupMember `json:"members"`
}

type GroupService interface {
	Create(ctx context.Context, ownerID, name string, description *string) (*repository.Group, error)
	Get(ctx context.Context, id string) (*GroupDetails, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
	audit     *AuditLogger
	now       func() time.Time
}

func NewGroupService(groupRepo repository.GroupRepository, audit *AuditLogger, now func() time.Time) GroupService {
	return &groupService{groupRepo: groupRepo, audit: audit, now: now}
}

func (s *groupService) Create(ctx context.Context, ownerID, name string, description *string) (*repository.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGroupNameLength {
		return nil, fmt.Errorf("%w: group name must be 1 to %d characters", ErrBadRequest, maxGroupNameLength)
	}

	group := &repository.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	owner := membership.NewApprovedOwner("", ownerID, s.now())

	if err := s.groupRepo.CreateWithOwner(ctx, group, owner); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.audit.Record(ctx, LevelInfo, "groups", ownerID, fmt.Sprintf("group %s created: %s", group.ID, group.Name))
	return group, nil
}

func (s *groupService) Get(ctx context.Context, id string) (*GroupDetails, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, id)
	}

	members, err := s.groupRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	if members == nil {
		members = []*repository.GroupMember{}
	}
	return &GroupDetails{Group: group, Members: members}, nil
}
