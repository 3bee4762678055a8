package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type Message struct {
	ID         string    `json:"id" db:"id"`
	SenderID   string    `json:"senderId" db:"sender_id"`
	ReceiverID string    `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id string) (*Message, error)
	FindByReceiver(ctx context.Context, receiverID string) ([]*Message, error)
	FindAll(ctx context.Context, limit int) ([]*Message, error)
	Delete(ctx context.Context, id string) error
}

type sqlMessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &sqlMessageRepository{db: db}
}

func (r *sqlMessageRepository) Create(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *sqlMessageRepository) FindByID(ctx context.Context, id string) (*Message, error) {
	var msg Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, sender_id, receiver_id, content, created_at FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *sqlMessageRepository) FindByReceiver(ctx context.Context, receiverID string) ([]*Message, error) {
	messages := []*Message{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC
	`, receiverID)
	return messages, err
}

func (r *sqlMessageRepository) FindAll(ctx context.Context, limit int) ([]*Message, error) {
	messages := []*Message{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return messages, err
}

func (r *sqlMessageRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}
