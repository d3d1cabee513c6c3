package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pharmacy-auth-api/internal/model"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore) {
	t.Helper()

	users := newFakeUserStore()
	return NewUserService(users, newFakeRoleStore()), users
}

func createPharmacist(t *testing.T, svc *UserService, email string) model.User {
	t.Helper()

	user, err := svc.Create(context.Background(), model.CreateUserRequest{
		Name:     "Pat",
		Email:    email,
		Password: "secret1",
		Role:     model.RolePharmacist,
	})
	require.NoError(t, err)

	return user
}

func TestUserServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates with hashed password and resolved role", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		user := createPharmacist(t, svc, "pat@pharmacy.local")
		require.Equal(t, model.RolePharmacist, user.Role.RoleName)
		require.False(t, user.IsEmailVerified)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _ := newUserFixture(t)
		createPharmacist(t, svc, "pat@pharmacy.local")

		_, err := svc.Create(context.Background(), model.CreateUserRequest{
			Name: "Pat Two", Email: "pat@pharmacy.local", Password: "x", Role: model.RoleCashier,
		})
		require.ErrorIs(t, err, model.ErrEmailExists)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, err := svc.Create(context.Background(), model.CreateUserRequest{
			Name: "Pat", Email: "pat@pharmacy.local", Password: "x", Role: "Intern",
		})
		require.ErrorIs(t, err, model.ErrRoleNotFound)
	})

	t.Run("blank email or password is rejected", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, err := svc.Create(context.Background(), model.CreateUserRequest{
			Name: "Pat", Email: "", Password: "x", Role: model.RoleCashier,
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = svc.Create(context.Background(), model.CreateUserRequest{
			Name: "Pat", Email: "pat@pharmacy.local", Password: "", Role: model.RoleCashier,
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestUserServiceList(t *testing.T) {
	t.Parallel()

	t.Run("paginates with meta", func(t *testing.T) {
		svc, _ := newUserFixture(t)
		for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
			createPharmacist(t, svc, email)
		}

		users, meta, err := svc.List(context.Background(), model.ListUsersQuery{Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, users, 2)
		require.Equal(t, 3, meta.Total)
		require.Equal(t, 2, meta.TotalPages)

		users, _, err = svc.List(context.Background(), model.ListUsersQuery{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("defaults out-of-range paging", func(t *testing.T) {
		svc, _ := newUserFixture(t)
		createPharmacist(t, svc, "a@x.com")

		_, meta, err := svc.List(context.Background(), model.ListUsersQuery{Page: 0, Limit: -5})
		require.NoError(t, err)
		require.Equal(t, 1, meta.Page)
		require.Equal(t, 10, meta.Limit)
	})

	t.Run("rejects a role filter outside the enumeration", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, _, err := svc.List(context.Background(), model.ListUsersQuery{Role: "Wizard"})
		require.ErrorIs(t, err, model.ErrRoleNotFound)
	})
}

func TestUserServiceUpdate(t *testing.T) {
	t.Parallel()

	t.Run("updates role, password, and verified flag", func(t *testing.T) {
		svc, users := newUserFixture(t)
		user := createPharmacist(t, svc, "pat@pharmacy.local")

		newRole := model.RoleAdmin
		newPassword := "rotated1"
		verified := true
		updated, err := svc.Update(context.Background(), user.ID, model.UpdateUserRequest{
			Role:            &newRole,
			Password:        &newPassword,
			IsEmailVerified: &verified,
		})
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, updated.Role.RoleName)
		require.True(t, updated.IsEmailVerified)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("rotated1")))

		stored, err := users.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, stored.Role.RoleName)
	})

	t.Run("unknown role leaves the user untouched", func(t *testing.T) {
		svc, users := newUserFixture(t)
		user := createPharmacist(t, svc, "pat@pharmacy.local")

		bad := "Wizard"
		_, err := svc.Update(context.Background(), user.ID, model.UpdateUserRequest{Role: &bad})
		require.ErrorIs(t, err, model.ErrRoleNotFound)

		stored, err := users.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, model.RolePharmacist, stored.Role.RoleName)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		name := "Nobody"
		_, err := svc.Update(context.Background(), "missing-id", model.UpdateUserRequest{Name: &name})
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	t.Parallel()

	t.Run("removes the user", func(t *testing.T) {
		svc, users := newUserFixture(t)
		user := createPharmacist(t, svc, "pat@pharmacy.local")

		require.NoError(t, svc.Delete(context.Background(), user.ID))

		_, err := users.FindByID(context.Background(), user.ID)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		svc, _ := newUserFixture(t)
		require.ErrorIs(t, svc.Delete(context.Background(), "missing-id"), model.ErrUserNotFound)
	})
}
