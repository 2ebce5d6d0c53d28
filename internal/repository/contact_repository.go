package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adorn-jewellery/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrContactMessageNotFound = errors.New("contact message not found")
)

// ContactRepository defines the interface for inbound contact messages
type ContactRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
	List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.Name, message.Email, message.Subject, message.Message, message.IsRead, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

// List retrieves messages newest first
func (r *contactRepository) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, is_read, created_at
		FROM contact_messages
		WHERE ($1 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ContactMessage{}
	for rows.Next() {
		m := &domain.ContactMessage{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}
	return messages, nil
}

func (r *contactRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark contact message read: %w", err)
	}
	return rowsAffectedOr(result, ErrContactMessageNotFound)
}
