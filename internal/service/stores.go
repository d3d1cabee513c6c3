package service

import (
	"context"

	"pharmacy-auth-api/internal/model"
)

// UserStore is the persistence contract the workflows depend on. The pgx
// repository satisfies it in production; tests use in-memory fakes.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q model.ListUsersQuery) ([]model.User, int, error)
}

type RoleStore interface {
	FindByName(ctx context.Context, name string) (model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
}

// Mailer delivers account emails. Failures are logged by the workflows, never
// propagated to callers.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email string, token string) error
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
}
