//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmacy-auth-api/internal/config"
	"pharmacy-auth-api/internal/database"
	"pharmacy-auth-api/internal/handler"
	"pharmacy-auth-api/internal/middleware"
	"pharmacy-auth-api/internal/model"
	"pharmacy-auth-api/internal/repository"
	"pharmacy-auth-api/internal/router"
	"pharmacy-auth-api/internal/service"
	"pharmacy-auth-api/internal/token"
)

// recordingMailer captures outbound emails so flows that depend on a mailed
// token can be driven end to end without an SMTP server.
type recordingMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	Kind  string
	Email string
	Token string
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, email string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{Kind: "verification", Email: email, Token: token})
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{Kind: "reset", Email: email, Token: token})
	return nil
}

func (m *recordingMailer) last(t *testing.T) capturedMail {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func newTestServer(t *testing.T) (*httptest.Server, *recordingMailer) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dsn, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db.Pool)
	roleRepo := repository.NewRoleRepository(db.Pool)

	tokenManager, err := token.NewManager(token.Config{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		ResetTTL:        time.Hour,
		VerificationTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	mailer := &recordingMailer{}
	authService := service.NewAuthService(userRepo, roleRepo, tokenManager, mailer)
	userService := service.NewUserService(userRepo, roleRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, userHandler))
	t.Cleanup(server.Close)

	return server, mailer
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

func doJSON(t *testing.T, method string, url string, payload any, accessToken string) (int, apiEnvelope) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope apiEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return resp.StatusCode, envelope
}

func registerUser(t *testing.T, serverURL string, email string, password string, role string) {
	t.Helper()

	status, _ := doJSON(t, http.MethodPost, serverURL+"/api/v1/auth/register", map[string]string{
		"name":           "Test User",
		"email":          email,
		"password":       password,
		"role":           role,
		"contact_number": "555-0100",
	}, "")
	require.Equal(t, http.StatusCreated, status)
}

func loginUser(t *testing.T, serverURL string, email string, password string) model.TokenPair {
	t.Helper()

	status, envelope := doJSON(t, http.MethodPost, serverURL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, status)

	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(envelope.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	return pair
}
