// Package membership holds the group membership record and the rules for moving
// it between statuses.
package membership

import (
	"errors"
	"fmt"
	"time"
)

// Status is the state of a membership. The zero value is not a valid status.
type Status int

const (
	Pending Status = iota + 1
	Approved
	Rejected
	Cancelled
)

var statusNames = map[Status]string{
	Pending:   "Pending",
	Approved:  "Approved",
	Rejected:  "Rejected",
	Cancelled: "Cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// MarshalText implements encoding.TextMarshaler so JSON carries the status name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid membership status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus maps a stored status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown membership status %q", name)
}

// Action is a requested change to a membership.
type Action string

const (
	Accept Action = "accept"
	Reject Action = "reject"
	Cancel Action = "cancel"
)

// ErrInvalidTransition is returned for any (status, action) pair not in the table.
var ErrInvalidTransition = errors.New("invalid membership transition")

var transitions = map[Status]map[Action]Status{
	Pending: {
		Accept: Approved,
		Reject: Rejected,
		Cancel: Cancelled,
	},
}

// Next returns the status reached by applying action to from.
func Next(from Status, action Action) (Status, error) {
	to, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s a %s membership", ErrInvalidTransition, action, from)
	}
	return to, nil
}

// Membership is one user's relationship to one group.
type Membership struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"groupId"`
	UserID      string     `json:"userId"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// New returns a Pending membership, the only way an invitation starts.
func New(groupID, userID string, now time.Time) *Membership {
	return &Membership{
		GroupID:   groupID,
		UserID:    userID,
		Status:    Pending,
		CreatedAt: now,
	}
}

// NewApprovedOwner returns the membership a group owner holds from creation.
func NewApprovedOwner(groupID, ownerID string, now time.Time) *Membership {
	return &Membership{
		GroupID:   groupID,
		UserID:    ownerID,
		Status:    Approved,
		CreatedAt: now,
	}
}

// Apply moves m to the status reached by action and stamps its timestamps.
// On error m is left untouched.
func (m *Membership) Apply(action Action, now time.Time) error {
	to, err := Next(m.Status, action)
	if err != nil {
		return err
	}
	m.Status = to
	m.UpdatedAt = &now
	if action == Accept || action == Reject {
		m.RespondedAt = &now
	}
	return nil
}

// ResponseAction maps an accept flag to the corresponding action.
func ResponseAction(accept bool) Action {
	if accept {
		return Accept
	}
	return Reject
}
