package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/notification"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

// MockUserRepository is an in-memory repository.UserRepository.
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[string]*repository.User
	nextID int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*repository.User), nextID: 1}
}

func (m *MockUserRepository) add(id string, admin bool) *repository.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &repository.User{ID: id, Name: id, Surname: "Test", Email: id + "@example.com", IsAdmin: admin}
	m.users[id] = u
	return u
}

func (m *MockUserRepository) Create(_ context.Context, user *repository.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", m.nextID)
		m.nextID++
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) FindByID(_ context.Context, id string) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) FindAll(_ context.Context) ([]*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*repository.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockGroupRepository is an in-memory repository.GroupRepository that shares
// membership storage with a MockMembershipRepository.
type MockGroupRepository struct {
	mu          sync.Mutex
	groups      map[string]*repository.Group
	memberships *MockMembershipRepository
	users       *MockUserRepository
	nextID      int
}

func NewMockGroupRepository(memberships *MockMembershipRepository, users *MockUserRepository) *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[string]*repository.Group),
		memberships: memberships,
		users:       users,
		nextID:      1,
	}
}

func (m *MockGroupRepository) add(id, name, ownerID string) *repository.Group {
	m.mu.Lock()
	g := &repository.Group{ID: id, Name: name, OwnerID: ownerID, CreatedAt: time.Now()}
	m.groups[id] = g
	m.mu.Unlock()
	m.memberships.Create(context.Background(), membership.NewApprovedOwner(id, ownerID, g.CreatedAt))
	return g
}

func (m *MockGroupRepository) CreateWithOwner(ctx context.Context, group *repository.Group, owner *membership.Membership) error {
	m.mu.Lock()
	group.ID = fmt.Sprintf("group-%d", m.nextID)
	m.nextID++
	group.CreatedAt = time.Now()
	cp := *group
	m.groups[group.ID] = &cp
	m.mu.Unlock()

	owner.GroupID = group.ID
	return m.memberships.Create(ctx, owner)
}

func (m *MockGroupRepository) FindByID(_ context.Context, id string) (*repository.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupID string) ([]*repository.GroupMember, error) {
	var out []*repository.GroupMember
	for _, ms := range m.memberships.all() {
		if ms.GroupID != groupID {
			continue
		}
		u, _ := m.users.FindByID(ctx, ms.UserID)
		out = append(out, &repository.GroupMember{Membership: ms, User: u})
	}
	return out, nil
}

// MockMembershipRepository enforces the (group, user) uniqueness the database
// constraint provides, and the status-guarded update.
type MockMembershipRepository struct {
	mu     sync.Mutex
	rows   map[string]*membership.Membership
	groups *MockGroupRepository
	nextID int

	// failUpdate, when set, is returned by UpdateStatus
	failUpdate error
	// beforeUpdate runs inside UpdateStatus before the guard is checked
	beforeUpdate func(m *membership.Membership)
}

func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{rows: make(map[string]*membership.Membership), nextID: 1}
}

func membershipKey(groupID, userID string) string {
	return groupID + "/" + userID
}

func (m *MockMembershipRepository) all() []*membership.Membership {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*membership.Membership, 0, len(m.rows))
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockMembershipRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MockMembershipRepository) Create(_ context.Context, ms *membership.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membershipKey(ms.GroupID, ms.UserID)
	if _, ok := m.rows[key]; ok {
		return repository.ErrDuplicate
	}
	ms.ID = fmt.Sprintf("m-%03d", m.nextID)
	m.nextID++
	cp := *ms
	m.rows[key] = &cp
	return nil
}

func (m *MockMembershipRepository) FindByGroupAndUser(_ context.Context, groupID, userID string) (*membership.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[membershipKey(groupID, userID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *MockMembershipRepository) UpdateStatus(_ context.Context, ms *membership.Membership, prev membership.Status) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(ms)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[membershipKey(ms.GroupID, ms.UserID)]
	if !ok || r.ID != ms.ID || r.Status != prev {
		return repository.ErrStaleWrite
	}
	r.Status = ms.Status
	r.UpdatedAt = ms.UpdatedAt
	r.RespondedAt = ms.RespondedAt
	return nil
}

// forceStatus changes a stored row behind the service's back.
func (m *MockMembershipRepository) forceStatus(groupID, userID string, s membership.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[membershipKey(groupID, userID)]; ok {
		r.Status = s
	}
}

func (m *MockMembershipRepository) ListByOwner(ctx context.Context, ownerID string) ([]*repository.Invitation, error) {
	var out []*repository.Invitation
	for _, ms := range m.all() {
		g, _ := m.groups.FindByID(ctx, ms.GroupID)
		if g == nil || g.OwnerID != ownerID || ms.UserID == ownerID {
			continue
		}
		out = append(out, &repository.Invitation{Membership: ms, GroupName: g.Name, OwnerID: g.OwnerID})
	}
	return out, nil
}

func (m *MockMembershipRepository) ListByUser(ctx context.Context, userID string) ([]*repository.Invitation, error) {
	var out []*repository.Invitation
	for _, ms := range m.all() {
		g, _ := m.groups.FindByID(ctx, ms.GroupID)
		if g == nil || ms.UserID != userID || g.OwnerID == userID {
			continue
		}
		out = append(out, &repository.Invitation{Membership: ms, GroupName: g.Name, OwnerID: g.OwnerID})
	}
	return out, nil
}

// MockMessageRepository is an in-memory repository.MessageRepository.
type MockMessageRepository struct {
	mu       sync.Mutex
	messages map[string]*repository.Message
	nextID   int
	failErr  error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[string]*repository.Message), nextID: 1}
}

func (m *MockMessageRepository) Create(_ context.Context, msg *repository.Message) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%03d", m.nextID)
	m.nextID++
	msg.CreatedAt = time.Now()
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *MockMessageRepository) FindByID(_ context.Context, id string) (*repository.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		cp := *msg
		return &cp, nil
	}
	return nil, nil
}

func (m *MockMessageRepository) FindByReceiver(_ context.Context, receiverID string) ([]*repository.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*repository.Message
	for _, msg := range m.messages {
		if msg.ReceiverID == receiverID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockMessageRepository) FindAll(_ context.Context, limit int) ([]*repository.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*repository.Message
	for _, msg := range m.messages {
		if len(out) >= limit {
			break
		}
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockMessageRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, id)
	return nil
}

// MockAuditLogRepository records audit rows.
type MockAuditLogRepository struct {
	mu      sync.Mutex
	entries []*repository.AuditLog
	failErr error
}

func (m *MockAuditLogRepository) Create(_ context.Context, entry *repository.AuditLog) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditLogRepository) FindRecent(_ context.Context, limit int) ([]*repository.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return append([]*repository.AuditLog(nil), m.entries[:limit]...), nil
}

func (m *MockAuditLogRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*repository.AuditLog
	var n int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

func (m *MockAuditLogRepository) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// recordingNotifier captures dispatched events without a transport.
type recordingNotifier struct {
	mu     sync.Mutex
	events []dispatched
}

type dispatched struct {
	target string
	event  notification.Event
}

func (n *recordingNotifier) Dispatch(target string, ev notification.Event) notification.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, dispatched{target: target, event: ev})
	return notification.Report{}
}

func (n *recordingNotifier) sent() []dispatched {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dispatched(nil), n.events...)
}

var errDatabaseDown = errors.New("database is down")
