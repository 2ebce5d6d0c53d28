package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"adorn-jewellery/internal/domain"

	"github.com/google/uuid"
)

func TestUserEmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "  Mixed." + uuid.NewString() + "@Example.COM ",
		PasswordHash: "hash",
		FirstName:    "Njeri",
		LastName:     "Mwangi",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.Email != strings.ToLower(user.Email) {
		t.Fatalf("expected stored email lower-cased, got %q", user.Email)
	}

	found, err := repo.FindByEmail(ctx, strings.ToUpper(user.Email))
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("found wrong user %s", found.ID)
	}

	dup := *user
	dup.ID = uuid.New()
	if err := repo.Create(ctx, &dup); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestFindUserNotFound(t *testing.T) {
	repo := NewUserRepository(testDB)

	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRefreshTokenRevoke(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)

	token := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, token); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if found.UserID != user.ID {
		t.Fatalf("token owned by wrong user %s", found.UserID)
	}

	if err := repo.Revoke(ctx, token.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := repo.FindByToken(ctx, token.Token); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Fatalf("expected ErrRefreshTokenRevoked, got %v", err)
	}
	if _, err := repo.FindByToken(ctx, "missing"); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestContactMessagesUnreadFilterAndMarkRead(t *testing.T) {
	repo := NewContactRepository(testDB)
	ctx := context.Background()

	message := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      "Amina",
		Email:     "amina@example.com",
		Subject:   "Ring sizing",
		Message:   "Do you resize rings?",
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, message); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !containsMessage(t, repo, true, message.ID) {
		t.Fatal("expected new message in unread list")
	}

	if err := repo.MarkRead(ctx, message.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if containsMessage(t, repo, true, message.ID) {
		t.Fatal("read message still in unread list")
	}
	if !containsMessage(t, repo, false, message.ID) {
		t.Fatal("expected read message in full list")
	}

	if err := repo.MarkRead(ctx, uuid.New()); !errors.Is(err, ErrContactMessageNotFound) {
		t.Fatalf("expected ErrContactMessageNotFound, got %v", err)
	}
}

func containsMessage(t *testing.T, repo ContactRepository, unreadOnly bool, id uuid.UUID) bool {
	t.Helper()
	messages, err := repo.List(context.Background(), unreadOnly)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}
