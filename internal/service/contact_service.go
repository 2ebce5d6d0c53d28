package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/notification"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultContactSubject = "No Subject"

// ContactInput is a validated contact form submission
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactService defines the interface for contact intake
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	notifier    notification.Notifier
	logger      *zap.Logger
}

// NewContactService creates a new instance of ContactService
func NewContactService(contactRepo repository.ContactRepository, notifier notification.Notifier, logger *zap.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit stores the message and alerts the shop; the alert is best-effort
func (s *contactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = DefaultContactSubject
	}

	message := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Subject:   subject,
		Message:   strings.TrimSpace(input.Message),
		CreatedAt: time.Now(),
	}

	if message.Name == "" || message.Message == "" {
		return nil, ErrBlankField
	}

	if err := s.contactRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	if !s.notifier.ContactReceived(context.WithoutCancel(ctx), message) {
		s.logger.Warn("Contact notification not delivered", zap.String("contact_message_id", message.ID.String()))
	}
	return message, nil
}

func (s *contactService) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	messages, err := s.contactRepo.List(ctx, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, nil
}

func (s *contactService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.contactRepo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContactMessageNotFound) {
			return err
		}
		return fmt.Errorf("failed to mark contact message read: %w", err)
	}
	return nil
}
