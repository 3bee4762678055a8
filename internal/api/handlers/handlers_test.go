package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
	"github.com/Marga-Ghale/ora-chat-backend/internal/service"
)

const (
	testUser  = "7f1b2a4e-1d1c-4c3e-9a55-0a9b1c2d3e4f"
	testGroup = "3c6f0e8a-5b2d-4f71-8e0c-6d9a7b8c9d0e"
	testOther = "b2a1c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeInvitations struct {
	err        error
	lastAccept *bool
	lastGroup  string
	lastTarget string
}

func (f *fakeInvitations) result(groupID, userID string, s membership.Status) (*membership.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &membership.Membership{ID: "m1", GroupID: groupID, UserID: userID, Status: s}, nil
}

func (f *fakeInvitations) Invite(_ context.Context, _, groupID, targetUserID string) (*membership.Membership, error) {
	f.lastGroup, f.lastTarget = groupID, targetUserID
	return f.result(groupID, targetUserID, membership.Pending)
}

func (f *fakeInvitations) Respond(_ context.Context, userID, groupID string, accept bool) (*membership.Membership, error) {
	f.lastGroup, f.lastAccept = groupID, &accept
	if accept {
		return f.result(groupID, userID, membership.Approved)
	}
	return f.result(groupID, userID, membership.Rejected)
}

func (f *fakeInvitations) Decline(ctx context.Context, userID, groupID string) (*membership.Membership, error) {
	return f.Respond(ctx, userID, groupID, false)
}

func (f *fakeInvitations) CancelInvite(_ context.Context, _, groupID, targetUserID string) (*membership.Membership, error) {
	f.lastGroup, f.lastTarget = groupID, targetUserID
	return f.result(groupID, targetUserID, membership.Cancelled)
}

func (f *fakeInvitations) History(context.Context, string, bool) ([]*repository.Invitation, error) {
	return []*repository.Invitation{}, f.err
}

type fakeMessages struct {
	deleteErr error
}

func (f *fakeMessages) Send(_ context.Context, _, senderID, receiverID, content string) (*repository.Message, error) {
	return &repository.Message{ID: "msg", SenderID: senderID, ReceiverID: receiverID, Content: content}, nil
}

func (f *fakeMessages) ListForReceiver(context.Context, string, string) ([]*repository.Message, error) {
	return []*repository.Message{}, nil
}

func (f *fakeMessages) Delete(context.Context, string, string) error {
	return f.deleteErr
}

func newTestRouter(inv *fakeInvitations, msgs *fakeMessages, authenticated bool) *gin.Engine {
	groups := &GroupHandler{invitationService: inv}
	messages := &MessageHandler{messageService: msgs}

	r := gin.New()
	api := r.Group("/api")
	if authenticated {
		api.Use(func(c *gin.Context) {
			c.Set("userID", testUser)
			c.Next()
		})
	}
	api.POST("/groups/invite", groups.Invite)
	api.POST("/groups/respond/:groupId", groups.Respond)
	api.POST("/groups/cancel/:groupId", groups.CancelInvite)
	api.POST("/messages/send", messages.Send)
	api.DELETE("/messages/:id", messages.Delete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: group", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not owner", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: pending", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: bad", service.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("respond: %w", membership.ErrInvalidTransition), http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		handleServiceError(c, tt.err)
		if w.Code != tt.want {
			t.Errorf("%v: got %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}

func TestHandleServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handleServiceError(c, errors.New("pq: password authentication failed"))

	if strings.Contains(w.Body.String(), "pq:") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}

func TestInvite(t *testing.T) {
	inv := &fakeInvitations{}
	r := newTestRouter(inv, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/groups/invite",
		fmt.Sprintf(`{"groupId":%q,"targetUserId":%q}`, testGroup, testOther))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "Pending" {
		t.Errorf("status field: got %v, want Pending", got["status"])
	}
	if inv.lastGroup != testGroup || inv.lastTarget != testOther {
		t.Errorf("service args: got %s %s", inv.lastGroup, inv.lastTarget)
	}
}

func TestInvite_RejectsMalformedIDs(t *testing.T) {
	r := newTestRouter(&fakeInvitations{}, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/groups/invite", `{"groupId":"nope","targetUserId":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestRespond_AcceptQuery(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantAccept bool
	}{
		{"", http.StatusOK, true},
		{"?accept=true", http.StatusOK, true},
		{"?accept=false", http.StatusOK, false},
		{"?accept=maybe", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		inv := &fakeInvitations{}
		r := newTestRouter(inv, &fakeMessages{}, true)

		w := do(r, http.MethodPost, "/api/groups/respond/"+testGroup+tt.query, "")
		if w.Code != tt.wantStatus {
			t.Errorf("%q: status got %d, want %d", tt.query, w.Code, tt.wantStatus)
			continue
		}
		if tt.wantStatus == http.StatusOK && (inv.lastAccept == nil || *inv.lastAccept != tt.wantAccept) {
			t.Errorf("%q: accept got %v, want %v", tt.query, inv.lastAccept, tt.wantAccept)
		}
	}
}

func TestRespond_InvalidTransitionIsBadRequest(t *testing.T) {
	inv := &fakeInvitations{err: fmt.Errorf("respond: %w", membership.ErrInvalidTransition)}
	r := newTestRouter(inv, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/groups/respond/"+testGroup, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestRespond_BadGroupParam(t *testing.T) {
	inv := &fakeInvitations{}
	r := newTestRouter(inv, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/groups/respond/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
	if inv.lastAccept != nil {
		t.Error("service called with invalid group id")
	}
}

func TestCancelInvite_PassesTarget(t *testing.T) {
	inv := &fakeInvitations{}
	r := newTestRouter(inv, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/groups/cancel/"+testGroup, fmt.Sprintf(`{"targetUserId":%q}`, testOther))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if inv.lastTarget != testOther {
		t.Errorf("target: got %q", inv.lastTarget)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	r := newTestRouter(&fakeInvitations{}, &fakeMessages{}, false)

	w := do(r, http.MethodPost, "/api/groups/respond/"+testGroup, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestMessageDelete(t *testing.T) {
	r := newTestRouter(&fakeInvitations{}, &fakeMessages{}, true)
	if w := do(r, http.MethodDelete, "/api/messages/"+testOther, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: got %d, want 204", w.Code)
	}

	r = newTestRouter(&fakeInvitations{}, &fakeMessages{deleteErr: service.ErrForbidden}, true)
	if w := do(r, http.MethodDelete, "/api/messages/"+testOther, ""); w.Code != http.StatusForbidden {
		t.Errorf("forbidden delete: got %d, want 403", w.Code)
	}
}

func TestMessageSend(t *testing.T) {
	r := newTestRouter(&fakeInvitations{}, &fakeMessages{}, true)

	w := do(r, http.MethodPost, "/api/messages/send",
		fmt.Sprintf(`{"senderId":%q,"receiverId":%q,"content":"hi"}`, testUser, testOther))
	if w.Code != http.StatusCreated {
		t.Errorf("send: got %d, body %s", w.Code, w.Body.String())
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubStats struct{}

func (stubStats) GetConnectedClientsCount() int { return 3 }
func (stubStats) GetOnlineUsers() []string      { return []string{"a", "b"} }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler(stubPinger{}, nil, stubStats{}).Check)

	w := do(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var got map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &got)
	if got["cache"] != "disabled" || got["connectedClients"] != float64(3) || got["onlineUsers"] != float64(2) {
		t.Errorf("body: got %v", got)
	}

	r = gin.New()
	r.GET("/health", NewHealthHandler(stubPinger{err: errors.New("down")}, nil, stubStats{}).Check)
	if w := do(r, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("db down: got %d, want 503", w.Code)
	}
}
