package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pharmacy-auth-api/internal/model"
	"pharmacy-auth-api/internal/token"
)

const bcryptCost = 10

type AuthService struct {
	users  UserStore
	roles  RoleStore
	tokens *token.Manager
	mailer Mailer
}

func NewAuthService(users UserStore, roles RoleStore, tokens *token.Manager, mailer Mailer) *AuthService {
	return &AuthService{users: users, roles: roles, tokens: tokens, mailer: mailer}
}

// Login checks the credentials and issues an access+refresh pair. An unknown
// email and a wrong password return the same error so the endpoint cannot be
// used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.tokens.IssuePair(user)
}

// Register creates an unverified account and mails a verification link.
// Delivery failure does not undo or fail the registration.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.User{}, fmt.Errorf("email and password are required: %w", model.ErrInvalidInput)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("register uniqueness check: %w", err)
	}
	if exists {
		return model.User{}, model.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	role, err := s.roles.FindByName(ctx, req.Role)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		PasswordHash:    string(hash),
		Role:            role,
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
		IsEmailVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The unique index is the tie-breaker when two registrations race past
	// the pre-check; the repository reports that as ErrEmailExists.
	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}

	s.sendVerification(ctx, user.Email)

	return user, nil
}

// Refresh validates a refresh token, re-resolves the account, and issues a
// fresh pair. The password is not re-checked; possession of a valid refresh
// token is the proof of identity here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, token.ClassRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, model.ErrUserNotFound) {
		// The subject no longer exists; the token is worthless.
		return model.TokenPair{}, model.ErrTokenInvalid
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh lookup: %w", err)
	}

	return s.tokens.IssuePair(user)
}

// ForgotPassword issues a reset token and mails it. It reports success even
// for unknown addresses so the endpoint cannot confirm account existence.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("forgot password lookup: %w", err)
	}

	resetToken, err := s.tokens.IssuePurpose(user.Email, token.ClassPasswordReset)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, resetToken); err != nil {
		slog.Error("password reset email failed", "error", err)
	}

	return nil
}

// ResetPassword applies a new password for the account named by a valid reset
// token. The token stays usable until its expiry elapses; there is no
// single-use marker.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", model.ErrInvalidInput)
	}

	email, err := s.tokens.VerifyPurpose(rawToken, token.ClassPasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// VerifyEmail marks the account named by a valid verification token as
// verified. Re-submitting a still-valid token is a no-op repeat.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	email, err := s.tokens.VerifyPurpose(rawToken, token.ClassEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.users.SetEmailVerified(ctx, user.ID)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) sendVerification(ctx context.Context, email string) {
	verificationToken, err := s.tokens.IssuePurpose(email, token.ClassEmailVerification)
	if err != nil {
		slog.Error("issue verification token failed", "error", err)
		return
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		slog.Error("verification email failed", "error", err)
	}
}
