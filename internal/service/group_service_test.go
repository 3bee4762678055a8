package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
)

func TestGroupCreate_OwnerIsApprovedMember(t *testing.T) {
	users := NewMockUserRepository()
	memberships := NewMockMembershipRepository()
	groups := NewMockGroupRepository(memberships, users)
	memberships.groups = groups
	users.add("owner", false)

	svc := NewGroupService(groups, NewAuditLogger(&MockAuditLogRepository{}, zap.NewNop()), time.Now)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", "  Team  ", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Name != "Team" || g.OwnerID != "owner" {
		t.Errorf("group: got %+v", g)
	}

	details, err := svc.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(details.Members) != 1 {
		t.Fatalf("members: got %d, want 1", len(details.Members))
	}
	if m := details.Members[0]; m.UserID != "owner" || m.Status != membership.Approved {
		t.Errorf("owner membership: got %+v", m.Membership)
	}
}

func TestGroupCreate_NameValidation(t *testing.T) {
	memberships := NewMockMembershipRepository()
	groups := NewMockGroupRepository(memberships, NewMockUserRepository())
	svc := NewGroupService(groups, NewAuditLogger(&MockAuditLogRepository{}, zap.NewNop()), time.Now)

	for _, name := range []string{"", "   ", strings.Repeat("n", maxGroupNameLength+1)} {
		if _, err := svc.Create(context.Background(), "owner", name, nil); !errors.Is(err, ErrBadRequest) {
			t.Errorf("name %q: got %v, want ErrBadRequest", name, err)
		}
	}
}

func TestGroupGet_NotFound(t *testing.T) {
	memberships := NewMockMembershipRepository()
	groups := NewMockGroupRepository(memberships, NewMockUserRepository())
	svc := NewGroupService(groups, NewAuditLogger(&MockAuditLogRepository{}, zap.NewNop()), time.Now)

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAdminOnlineUsersSorted(t *testing.T) {
	reg := presence.NewRegistry()
	reg.Register("zed", "c1")
	reg.Register("amy", "c2")
	reg.Register("amy", "c3")

	svc := NewAdminService(NewMockUserRepository(), NewMockMessageRepository(), &MockAuditLogRepository{}, reg)

	got := svc.OnlineUsers()
	if len(got) != 2 || got[0] != "amy" || got[1] != "zed" {
		t.Errorf("OnlineUsers: got %v", got)
	}
}

func TestAuditPurge(t *testing.T) {
	repo := &MockAuditLogRepository{}
	audit := NewAuditLogger(repo, zap.NewNop())
	audit.Record(context.Background(), LevelInfo, "test", "", "row")

	n, err := audit.Purge(context.Background(), time.Hour, time.Now().Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Errorf("Purge: got %d, %v; want 1", n, err)
	}
	if repo.len() != 0 {
		t.Errorf("rows left: %d", repo.len())
	}
}
