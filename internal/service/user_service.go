package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pharmacy-auth-api/internal/model"
)

// UserService is the admin-facing account management surface. Unlike
// Register it sends no verification email; an admin-created account is
// verified explicitly through an update when needed.
type UserService struct {
	users UserStore
	roles RoleStore
}

func NewUserService(users UserStore, roles RoleStore) *UserService {
	return &UserService{users: users, roles: roles}
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.User{}, fmt.Errorf("email and password are required: %w", model.ErrInvalidInput)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("create user uniqueness check: %w", err)
	}
	if exists {
		return model.User{}, model.ErrEmailExists
	}

	role, err := s.roles.FindByName(ctx, req.Role)
	if err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, q model.ListUsersQuery) ([]model.UserResponse, *model.Meta, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	if q.Role != "" && !model.ValidRoleName(q.Role) {
		return nil, nil, model.ErrRoleNotFound
	}

	users, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	meta := &model.Meta{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: totalPages}

	return out, meta, nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if req.Role != nil {
		role, err := s.roles.FindByName(ctx, *req.Role)
		if err != nil {
			return model.User{}, err
		}
		user.Role = role
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactNumber != nil {
		user.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}
	if req.IsEmailVerified != nil {
		user.IsEmailVerified = *req.IsEmailVerified
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	// Resolve first so a missing id reports not-found rather than a silent
	// zero-row delete.
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	return s.users.Delete(ctx, id)
}

func (s *UserService) Roles(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}
