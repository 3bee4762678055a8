package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
)

// Invitation is a membership listed together with its group, as shown in history.
type Invitation struct {
	*membership.Membership
	GroupName string `json:"groupName"`
	OwnerID   string `json:"ownerId"`
}

type MembershipRepository interface {
	// Create inserts a membership. A second row for the same (group, user) yields ErrDuplicate.
	Create(ctx context.Context, m *membership.Membership) error
	FindByGroupAndUser(ctx context.Context, groupID, userID string) (*membership.Membership, error)
	// UpdateStatus writes m's status and timestamps only if the stored status is still
	// prev. Otherwise it returns ErrStaleWrite.
	UpdateStatus(ctx context.Context, m *membership.Membership, prev membership.Status) error
	// ListByOwner returns invitations sent from groups owned by ownerID, excluding the
	// owner's own membership.
	ListByOwner(ctx context.Context, ownerID string) ([]*Invitation, error)
	// ListByUser returns invitations addressed to userID in groups they do not own.
	ListByUser(ctx context.Context, userID string) ([]*Invitation, error)
}

type pgMembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &pgMembershipRepository{pool: pool}
}

func (r *pgMembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	query := `
		INSERT INTO group_members (group_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, m.GroupID, m.UserID, m.Status.String(), m.CreatedAt).Scan(&m.ID)
	return mapInsertError(err)
}

func (r *pgMembershipRepository) FindByGroupAndUser(ctx context.Context, groupID, userID string) (*membership.Membership, error) {
	query := `
		SELECT id, group_id, user_id, status, created_at, updated_at, responded_at
		FROM group_members WHERE group_id = $1 AND user_id = $2
	`
	var status string
	m := &membership.Membership{}
	err := r.pool.QueryRow(ctx, query, groupID, userID).Scan(
		&m.ID, &m.GroupID, &m.UserID, &status, &m.CreatedAt, &m.UpdatedAt, &m.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if m.Status, err = membership.ParseStatus(status); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMembershipRepository) UpdateStatus(ctx context.Context, m *membership.Membership, prev membership.Status) error {
	query := `
		UPDATE group_members
		SET status = $3, updated_at = $4, responded_at = $5
		WHERE id = $1 AND status = $2
	`
	tag, err := r.pool.Exec(ctx, query, m.ID, prev.String(), m.Status.String(), m.UpdatedAt, m.RespondedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

const invitationSelect = `
	SELECT gm.id, gm.group_id, gm.user_id, gm.status, gm.created_at, gm.updated_at, gm.responded_at,
		g.name, g.owner_id
	FROM group_members gm
	JOIN groups g ON g.id = gm.group_id
`

func (r *pgMembershipRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Invitation, error) {
	return r.listInvitations(ctx,
		invitationSelect+`WHERE g.owner_id = $1 AND gm.user_id <> g.owner_id ORDER BY gm.created_at DESC`,
		ownerID)
}

func (r *pgMembershipRepository) ListByUser(ctx context.Context, userID string) ([]*Invitation, error) {
	return r.listInvitations(ctx,
		invitationSelect+`WHERE gm.user_id = $1 AND g.owner_id <> $1 ORDER BY gm.created_at DESC`,
		userID)
}

func (r *pgMembershipRepository) listInvitations(ctx context.Context, query string, arg string) ([]*Invitation, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := []*Invitation{}
	for rows.Next() {
		var status string
		inv := &Invitation{Membership: &membership.Membership{}}
		m := inv.Membership
		if err := rows.Scan(
			&m.ID, &m.GroupID, &m.UserID, &status, &m.CreatedAt, &m.UpdatedAt, &m.RespondedAt,
			&inv.GroupName, &inv.OwnerID,
		); err != nil {
			return nil, err
		}
		if m.Status, err = membership.ParseStatus(status); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}
