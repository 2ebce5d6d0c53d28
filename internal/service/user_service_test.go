package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (UserService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	svc := NewUserService(userRepo, refreshTokenRepo, TokenSettings{
		Secret:     "test-secret-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	return svc, userRepo, refreshTokenRepo
}

var (
	genEmail    = gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`)
	genPassword = gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`)
	genName     = gen.RegexMatch(`[A-Z][a-z]{2,15}`)
)

// bcryptParameters keeps bcrypt-heavy properties to a handful of cases
func bcryptParameters(seed int64) *gopter.TestParameters {
	params := gopter.DefaultTestParametersWithSeed(seed)
	params.MinSuccessfulTests = 10
	return params
}

// Feature: accounts, Property: signup stores a bcrypt hash, never the plaintext
func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(bcryptParameters(11))

	properties.Property("passwords are hashed with bcrypt", prop.ForAll(
		func(email, password, firstName, lastName string) bool {
			svc, userRepo, _ := newTestUserService()
			ctx := context.Background()

			user, err := svc.Register(ctx, email, password, firstName, lastName)
			if err != nil {
				t.Logf("FAIL: Register failed: %v", err)
				return false
			}
			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for %s", email)
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: hash does not verify: %v", err)
				return false
			}
			if user.Role != domain.RoleUser {
				t.Logf("FAIL: new accounts must have the user role, got %s", user.Role)
				return false
			}

			stored, err := userRepo.FindByEmail(ctx, email)
			return err == nil && stored.PasswordHash == user.PasswordHash
		},
		genEmail, genPassword, genName, genName,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "wanjiru@example.com", "password123", "Wanjiru", "Kamau"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := svc.Register(ctx, "Wanjiru@Example.com", "password456", "Wanjiru", "Kamau")
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

// Feature: accounts, Property: access tokens carry user_id and role claims
func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := gopter.NewProperties(bcryptParameters(13))

	properties.Property("access tokens contain user ID and role claims", prop.ForAll(
		func(email, password, role string) bool {
			svc, userRepo, _ := newTestUserService()
			ctx := context.Background()

			user, err := svc.Register(ctx, email, password, "Achieng", "Otieno")
			if err != nil {
				return false
			}
			user.Role = role
			userRepo.users[user.Email] = user

			tokens, _, err := svc.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}
			if tokens.ExpiresIn != int((15 * time.Minute).Seconds()) {
				t.Logf("FAIL: unexpected expires_in %d", tokens.ExpiresIn)
				return false
			}

			claims, err := svc.ValidateToken(tokens.AccessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}
			return claims.UserID == user.ID &&
				claims.Role == role &&
				claims.ExpiresAt != nil &&
				claims.IssuedAt != nil
		},
		genEmail, genPassword, gen.OneConstOf(domain.RoleUser, domain.RoleAdmin),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "njeri@example.com", "correct-horse", "Njeri", "Mwangi"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "njeri@example.com", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

// Feature: accounts, Property: refresh then logout invalidates the refresh token
func TestProperty_RefreshAndLogoutRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(bcryptParameters(17))

	properties.Property("refresh works until logout", prop.ForAll(
		func(email, password string) bool {
			svc, _, refreshTokenRepo := newTestUserService()
			ctx := context.Background()

			if _, err := svc.Register(ctx, email, password, "Amina", "Hassan"); err != nil {
				return false
			}
			tokens, user, err := svc.Login(ctx, email, password)
			if err != nil {
				return false
			}

			access, err := svc.RefreshToken(ctx, tokens.RefreshToken)
			if err != nil {
				t.Logf("FAIL: refresh before logout failed: %v", err)
				return false
			}
			claims, err := svc.ValidateToken(access)
			if err != nil || claims.UserID != user.ID {
				t.Logf("FAIL: refreshed token invalid: %v", err)
				return false
			}

			if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}
			if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
				t.Logf("FAIL: expected ErrInvalidToken after logout, got %v", err)
				return false
			}
			_, err = refreshTokenRepo.FindByToken(ctx, tokens.RefreshToken)
			return errors.Is(err, repository.ErrRefreshTokenRevoked)
		},
		genEmail, genPassword,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _, refreshTokenRepo := newTestUserService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "otieno@example.com", "password123", "Otieno", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tokens, _, err := svc.Login(ctx, "otieno@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshTokenRepo.tokens[tokens.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLogoutUnknownTokenSucceeds(t *testing.T) {
	svc, _, _ := newTestUserService()
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("expected unknown token logout to succeed, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _, _ := newTestUserService()
	other := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), TokenSettings{
		Secret:    "another-secret",
		AccessTTL: time.Minute,
	})
	ctx := context.Background()
	if _, err := other.Register(ctx, "mallory@example.com", "password123", "Mallory", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tokens, _, err := other.Login(ctx, "mallory@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := svc.ValidateToken(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
