// internal/repository/postgres/message_repo.go
package postgres

import (
	"context"
	"fmt"

	"leadscout-service/internal/domain/message"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a lead's thread.
func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	query := `
		INSERT INTO messages (lead_id, user_id, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, m.LeadID, m.UserID, m.Subject, m.Body).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// FindByLead returns a lead's thread in chronological order.
func (r *MessageRepository) FindByLead(ctx context.Context, leadID int64) ([]*message.Message, error) {
	query := `
		SELECT id, lead_id, user_id, subject, body, created_at
		FROM messages
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*message.Message
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.LeadID, &m.UserID, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}
