package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	Level     string    `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Source    *string   `json:"source,omitempty" db:"source"`
	UserID    *string   `json:"userId,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
	FindRecent(ctx context.Context, limit int) ([]*AuditLog, error)
	// DeleteOlderThan removes rows created before cutoff and returns how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type sqlAuditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &sqlAuditLogRepository{db: db}
}

func (r *sqlAuditLogRepository) Create(ctx context.Context, entry *AuditLog) error {
	query := `
		INSERT INTO audit_logs (level, message, source, user_id)
		VALUES (:level, :message, :source, :user_id)
		RETURNING id, created_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *sqlAuditLogRepository) FindRecent(ctx context.Context, limit int) ([]*AuditLog, error) {
	logs := []*AuditLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, level, message, source, user_id, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return logs, err
}

func (r *sqlAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
