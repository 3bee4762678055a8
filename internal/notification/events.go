package notification

import "github.com/Marga-Ghale/ora-chat-backend/internal/membership"

// Event names pushed to clients.
const (
	EventGroupInviteReceived   = "GroupInviteReceived"
	EventGroupMemberResponded  = "GroupMemberResponded"
	EventGroupInviteCancelled  = "GroupInviteCancelled"
	EventReceivePrivateMessage = "ReceivePrivateMessage"
)

// Event is one notification addressed to a user.
type Event struct {
	Name    string
	Payload map[string]interface{}
}

// GroupInviteReceived tells the invitee about a new invitation.
func GroupInviteReceived(groupID, groupName string) Event {
	return Event{
		Name: EventGroupInviteReceived,
		Payload: map[string]interface{}{
			"groupId":   groupID,
			"groupName": groupName,
		},
	}
}

// GroupMemberResponded tells the group owner how an invitee answered.
func GroupMemberResponded(groupID, userID string, status membership.Status) Event {
	return Event{
		Name: EventGroupMemberResponded,
		Payload: map[string]interface{}{
			"groupId": groupID,
			"userId":  userID,
			"status":  status.String(),
		},
	}
}

// GroupInviteCancelled tells the invitee the owner withdrew the invitation.
func GroupInviteCancelled(groupID string) Event {
	return Event{
		Name: EventGroupInviteCancelled,
		Payload: map[string]interface{}{
			"groupId": groupID,
		},
	}
}

// ReceivePrivateMessage delivers a direct message.
func ReceivePrivateMessage(senderID, content string) Event {
	return Event{
		Name: EventReceivePrivateMessage,
		Payload: map[string]interface{}{
			"senderId": senderID,
			"content":  content,
		},
	}
}
