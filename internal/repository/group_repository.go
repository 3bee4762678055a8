package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
)

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupMember is a membership joined with the member's public profile.
type GroupMember struct {
	*membership.Membership
	User *User `json:"user,omitempty"`
}

type GroupRepository interface {
	// CreateWithOwner inserts the group and the owner's Approved membership atomically.
	CreateWithOwner(ctx context.Context, group *Group, owner *membership.Membership) error
	FindByID(ctx context.Context, id string) (*Group, error)
	ListMembers(ctx context.Context, groupID string) ([]*GroupMember, error)
}

type pgGroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &pgGroupRepository{pool: pool}
}

func (r *pgGroupRepository) CreateWithOwner(ctx context.Context, group *Group, owner *membership.Membership) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, group.Name, group.Description, group.OwnerID).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	owner.GroupID = group.ID
	owner.CreatedAt = group.CreatedAt
	err = tx.QueryRow(ctx, `
		INSERT INTO group_members (group_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, owner.GroupID, owner.UserID, owner.Status.String(), owner.CreatedAt).Scan(&owner.ID)
	if err != nil {
		return fmt.Errorf("insert owner membership: %w", mapInsertError(err))
	}

	return tx.Commit(ctx)
}

func (r *pgGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	query := `SELECT id, name, description, owner_id, created_at FROM groups WHERE id = $1`
	g := &Group{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *pgGroupRepository) ListMembers(ctx context.Context, groupID string) ([]*GroupMember, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.status, gm.created_at, gm.updated_at, gm.responded_at,
			u.id, u.name, u.surname, u.username, u.email, u.display_name, u.profile_picture_url,
			u.is_admin, u.created_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.created_at
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*GroupMember
	for rows.Next() {
		var status string
		m := &membership.Membership{}
		u := &User{}
		if err := rows.Scan(
			&m.ID, &m.GroupID, &m.UserID, &status, &m.CreatedAt, &m.UpdatedAt, &m.RespondedAt,
			&u.ID, &u.Name, &u.Surname, &u.Username, &u.Email, &u.DisplayName, &u.ProfilePictureURL,
			&u.IsAdmin, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		if m.Status, err = membership.ParseStatus(status); err != nil {
			return nil, err
		}
		members = append(members, &GroupMember{Membership: m, User: u})
	}
	return members, rows.Err()
}
