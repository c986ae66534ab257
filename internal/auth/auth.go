// Package auth issues and verifies signed session tokens.
//
// Login is mocked: any well-formed email with a non-empty password succeeds
// and receives the requested role (student when none is given). The session
// is carried explicitly through cookies and request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/timetable-admin/internal/validation"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoSession          = errors.New("no session")
)

// ParseRole maps free text to a role; anything unrecognised is a student.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleFaculty:
		return RoleFaculty
	default:
		return RoleStudent
	}
}

// Credentials is the login and signup form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin faculty student"`
}

// Session is an authenticated user.
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

type claims struct {
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	UserID string `json:"uid"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	validate   *validator.Validate
	now        func() time.Time
}

// NewManager creates a Manager. The secret must not be empty.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("auth secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		validate:   validation.New(),
		now:        time.Now,
	}, nil
}

// Login starts a session for well-formed credentials.
func (m *Manager) Login(ctx context.Context, c Credentials) (*Session, error) {
	return m.start(ctx, c)
}

// Signup behaves like Login; accounts are not persisted.
func (m *Manager) Signup(ctx context.Context, c Credentials) (*Session, error) {
	return m.start(ctx, c)
}

func (m *Manager) start(ctx context.Context, c Credentials) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.Email = strings.TrimSpace(c.Email)
	if err := m.validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, validation.Describe(err))
	}

	s := &Session{
		ID:     uuid.NewString(),
		Email:  strings.ToLower(c.Email),
		Role:   ParseRole(c.Role),
		UserID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(c.Email))).String(),
	}
	if err := m.sign(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Verify returns the session carried by an access token.
func (m *Manager) Verify(token string) (*Session, error) {
	return m.parse(token, kindAccess)
}

// Refresh exchanges a refresh token for a new token pair.
func (m *Manager) Refresh(refreshToken string) (*Session, error) {
	s, err := m.parse(refreshToken, kindRefresh)
	if err != nil {
		return nil, err
	}
	if err := m.sign(s); err != nil {
		return nil, err
	}
	return s, nil
}

// AccessTTL is the lifetime of an access token.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *Manager) sign(s *Session) error {
	now := m.now()
	access, err := m.token(s, kindAccess, now, m.accessTTL)
	if err != nil {
		return err
	}
	refresh, err := m.token(s, kindRefresh, now, m.refreshTTL)
	if err != nil {
		return err
	}
	s.AccessToken = access
	s.RefreshToken = refresh
	s.ExpiresAt = now.Add(m.accessTTL)
	return nil
}

func (m *Manager) token(s *Session, kind string, now time.Time, ttl time.Duration) (string, error) {
	c := claims{
		Email:  s.Email,
		Role:   s.Role,
		UserID: s.UserID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (m *Manager) parse(token, kind string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}

	s := &Session{
		ID:     c.Subject,
		Email:  c.Email,
		Role:   ParseRole(string(c.Role)),
		UserID: c.UserID,
	}
	if kind == kindAccess {
		s.AccessToken = token
		if c.ExpiresAt != nil {
			s.ExpiresAt = c.ExpiresAt.Time
		}
	}
	return s, nil
}

type ctxKey struct{}

// WithSession attaches a session to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Dashboard names the dashboard a role lands on.
func Dashboard(r Role) string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleFaculty:
		return "faculty"
	default:
		return "student"
	}
}
