package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmacy-auth-api/internal/model"
	"pharmacy-auth-api/internal/token"
)

// fakeUserStore is an in-memory UserStore mirroring the repository's
// contract, including the unique-email tie-break at save time.
type fakeUserStore struct {
	mu      sync.Mutex
	byID    map[string]model.User
	creates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]model.User{}}
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return model.ErrEmailExists
		}
	}
	f.byID[u.ID] = u
	f.creates++
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	f.byID[userID] = u
	return nil
}

func (f *fakeUserStore) SetEmailVerified(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsEmailVerified = true
	f.byID[userID] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserStore) List(_ context.Context, q model.ListUsersQuery) ([]model.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		if q.Role != "" && u.Role.RoleName != q.Role {
			continue
		}
		matched = append(matched, u)
	}

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start >= total {
		return []model.User{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

type fakeRoleStore struct {
	roles map[string]model.Role
}

func newFakeRoleStore() *fakeRoleStore {
	names := []string{model.RoleAdmin, model.RolePharmacist, model.RoleCashier, model.RoleCustomer, model.RoleSupplier}
	roles := make(map[string]model.Role, len(names))
	for i, name := range names {
		roles[name] = model.Role{ID: string(rune('a' + i)), RoleName: name}
	}
	return &fakeRoleStore{roles: roles}
}

func (f *fakeRoleStore) FindByName(_ context.Context, name string) (model.Role, error) {
	role, ok := f.roles[name]
	if !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	return role, nil
}

func (f *fakeRoleStore) List(_ context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(f.roles))
	for _, role := range f.roles {
		out = append(out, role)
	}
	return out, nil
}

type sentMail struct {
	kind  string
	email string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, email string, token string) error {
	return f.record("verification", email, token)
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	return f.record("reset", email, token)
}

func (f *fakeMailer) record(kind string, email string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errSMTPDown
	}
	f.sent = append(f.sent, sentMail{kind: kind, email: email, token: token})
	return nil
}

func (f *fakeMailer) last() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

var errSMTPDown = &smtpError{}

type smtpError struct{}

func (*smtpError) Error() string { return "smtp connection refused" }

func newTestTokenManager(t *testing.T) *token.Manager {
	t.Helper()

	m, err := token.NewManager(token.Config{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      168 * time.Hour,
		ResetTTL:        time.Hour,
		VerificationTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	return m
}

func newExpiredTokenManager(t *testing.T) *token.Manager {
	t.Helper()

	m, err := token.NewManager(token.Config{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTTL:       -time.Minute,
		RefreshTTL:      -time.Minute,
		ResetTTL:        -time.Minute,
		VerificationTTL: -time.Minute,
	})
	require.NoError(t, err)

	return m
}
