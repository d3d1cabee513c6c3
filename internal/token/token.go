package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pharmacy-auth-api/internal/model"
)

// Class selects the signing secret and lifetime a token is issued and
// verified under. Verifying a token against the wrong class fails closed.
type Class string

const (
	ClassAccess            Class = "access"
	ClassRefresh           Class = "refresh"
	ClassPasswordReset     Class = "password_reset"
	ClassEmailVerification Class = "email_verification"
)

// Claims is the payload of access and refresh tokens. The subject id lives in
// the embedded RegisteredClaims.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	Class    string `json:"cls"`
	jwt.RegisteredClaims
}

// PurposeClaims is the minimal payload of password-reset and
// email-verification tokens. It deliberately carries no role and no subject
// id, only the address the flow was requested for.
type PurposeClaims struct {
	Email string `json:"email"`
	Class string `json:"cls"`
	jwt.RegisteredClaims
}

type classConfig struct {
	secret []byte
	ttl    time.Duration
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Purpose-scoped tokens are signed with the access secret unless a
	// dedicated secret is configured.
	ResetSecret        string
	VerificationSecret string
	ResetTTL           time.Duration
	VerificationTTL    time.Duration
}

// Manager issues and verifies signed tokens. It is immutable after
// construction and safe for concurrent use.
type Manager struct {
	classes map[Class]classConfig
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}

	resetSecret := cfg.ResetSecret
	if resetSecret == "" {
		resetSecret = cfg.AccessSecret
	}
	verificationSecret := cfg.VerificationSecret
	if verificationSecret == "" {
		verificationSecret = cfg.AccessSecret
	}

	return &Manager{
		classes: map[Class]classConfig{
			ClassAccess:            {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
			ClassRefresh:           {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
			ClassPasswordReset:     {secret: []byte(resetSecret), ttl: cfg.ResetTTL},
			ClassEmailVerification: {secret: []byte(verificationSecret), ttl: cfg.VerificationTTL},
		},
	}, nil
}

func (m *Manager) AccessTTL() time.Duration {
	return m.classes[ClassAccess].ttl
}

// IssuePair signs an access and a refresh token for the same subject. The two
// tokens share claims but differ in class, secret, and expiry.
func (m *Manager) IssuePair(user model.User) (model.TokenPair, error) {
	access, err := m.issueIdentity(user, ClassAccess)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := m.issueIdentity(user, ClassRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.classes[ClassAccess].ttl.Seconds()),
	}, nil
}

func (m *Manager) issueIdentity(user model.User, class Class) (string, error) {
	cc, ok := m.classes[class]
	if !ok {
		return "", fmt.Errorf("unknown token class %q", class)
	}

	now := time.Now().UTC()
	claims := Claims{
		Email:    user.Email,
		Role:     user.Role.RoleName,
		Verified: user.IsEmailVerified,
		Class:    string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cc.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
}

// IssuePurpose signs a single-purpose token bound to an email address only.
func (m *Manager) IssuePurpose(email string, class Class) (string, error) {
	if class != ClassPasswordReset && class != ClassEmailVerification {
		return "", fmt.Errorf("class %q is not a purpose token class", class)
	}

	cc := m.classes[class]
	now := time.Now().UTC()
	claims := PurposeClaims{
		Email: email,
		Class: string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cc.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
}

// Verify checks signature and expiry of an access or refresh token under the
// given class's secret. A valid signature with an elapsed expiry yields
// model.ErrTokenExpired; everything else that fails yields
// model.ErrTokenInvalid.
func (m *Manager) Verify(raw string, class Class) (*Claims, error) {
	cc, ok := m.classes[class]
	if !ok {
		return nil, model.ErrTokenInvalid
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return cc.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, classifyParseError(err)
	}

	if claims.Class != string(class) {
		return nil, model.ErrTokenInvalid
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, model.ErrTokenInvalid
	}

	return &claims, nil
}

// VerifyPurpose validates a purpose-scoped token and returns the embedded
// email address.
func (m *Manager) VerifyPurpose(raw string, class Class) (string, error) {
	cc, ok := m.classes[class]
	if !ok || (class != ClassPasswordReset && class != ClassEmailVerification) {
		return "", model.ErrTokenInvalid
	}

	var claims PurposeClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return cc.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", classifyParseError(err)
	}

	if claims.Class != string(class) || claims.Email == "" {
		return "", model.ErrTokenInvalid
	}

	return claims.Email, nil
}

// classifyParseError maps jwt parse failures onto the two-way token error
// split. Signature failures are checked first so a token signed with another
// class's secret is never reported as merely expired.
func classifyParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return model.ErrTokenInvalid
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return model.ErrTokenExpired
	}
	return model.ErrTokenInvalid
}
