package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", "stepwise", time.Hour)
	require.NoError(t, err)
	return m
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := newTestManager(t)
	token, err := m.Issue(&account.User{ID: "u1", Username: "alice", Role: account.RoleAdmin})
	require.NoError(t, err)

	session, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "u1", session.UserID)
	require.Equal(t, "alice", session.Username)
	require.True(t, session.IsAdmin())
	require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := newTestManager(t)
	user := &account.User{ID: "u1", Username: "alice", Role: account.RoleUser}

	_, err := m.Parse("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = m.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenManager("other-secret", "stepwise", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(user)
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewTokenManager("test-secret", "someone-else", time.Hour)
	require.NoError(t, err)
	token, err := wrongIssuer.Issue(user)
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = expired.Issue(user)
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager(" ", "stepwise", time.Hour)
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", BearerToken("Bearer abc"))
	require.Equal(t, "abc", BearerToken("bearer  abc "))
	require.Empty(t, BearerToken("Basic abc"))
	require.Empty(t, BearerToken(""))
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)
	token, err := m.Issue(&account.User{ID: "u1", Username: "alice", Role: account.RoleUser})
	require.NoError(t, err)

	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := FromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "u1", session.UserID)
		require.False(t, session.IsAdmin())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "missing bearer token")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
