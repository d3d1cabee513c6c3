package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-auth-api/internal/model"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, role_name FROM user_roles WHERE role_name = $1`, name).
		Scan(&role.ID, &role.RoleName)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, model.ErrRoleNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("find role by name: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, role_name FROM user_roles ORDER BY role_name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0)
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.RoleName); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
