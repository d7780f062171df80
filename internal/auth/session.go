package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
)

var (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parsing and validation failures.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Session identifies the caller of a request.
type Session struct {
	UserID    string       `json:"userId"`
	Username  string       `json:"username"`
	Role      account.Role `json:"role"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// IsAdmin reports whether the session may manage the catalog.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == account.RoleAdmin
}

// SessionFor builds a session for a stored user.
func SessionFor(user *account.User) *Session {
	return &Session{UserID: user.ID, Username: user.Username, Role: user.Role}
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying the session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// FromContext returns the session from context, if present.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*Session)
	return session, ok && session != nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
