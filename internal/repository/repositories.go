package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	// Core repositories (pgxpool)
	UserRepo       UserRepository
	GroupRepo      GroupRepository
	MembershipRepo MembershipRepository

	// Append-mostly tables (sqlx)
	MessageRepo  MessageRepository
	AuditLogRepo AuditLogRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		UserRepo:       NewUserRepository(pool),
		GroupRepo:      NewGroupRepository(pool),
		MembershipRepo: NewMembershipRepository(pool),

		MessageRepo:  NewMessageRepository(db),
		AuditLogRepo: NewAuditLogRepository(db),
	}
}
