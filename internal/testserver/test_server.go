package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/stepwise/internal/auth"
	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/mcp"
	"github.com/rpggio/stepwise/internal/sqlite"
	"github.com/rpggio/stepwise/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is the full stack on an in-memory database behind httptest.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Tokens   *auth.TokenManager
	Accounts *account.Service
	Catalog  *catalog.Service
	Progress *progress.Service
	Journal  *journal.Service
	// Now is the clock used by the lifecycle engine. Tests may move it.
	Now time.Time
}

// New builds the stack. Options are appended to the lifecycle engine's own.
func New(t *testing.T, opts ...progress.Option) *TestServer {
	t.Helper()

	db, err := sqlite.NewMemory()
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager("test-secret", "stepwise-test", time.Hour)
	require.NoError(t, err)

	ts := &TestServer{DB: db, Tokens: tokens, Now: time.Now()}

	userRepo := sqlite.NewUserRepository(db)
	ts.Accounts = account.NewService(userRepo, account.PlaintextVerifier{}, nil)
	ts.Catalog = catalog.NewService(sqlite.NewCatalogRepository(db), nil)
	ts.Journal = journal.NewService(sqlite.NewJournalRepository(db), nil)
	engineOpts := append([]progress.Option{
		progress.WithClock(func() time.Time { return ts.Now }),
		progress.WithJournal(ts.Journal),
	}, opts...)
	ts.Progress = progress.NewService(sqlite.NewUserActivityRepository(db), ts.Catalog, ts.Accounts, nil, engineOpts...)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      ts.MCPServices(),
		Tokens:        tokens,
		TransportMode: "http",
	})

	ts.Server = httptest.NewServer(transport.NewServer(transport.Config{
		Accounts: ts.Accounts,
		Catalog:  ts.Catalog,
		Progress: ts.Progress,
		Journal:  ts.Journal,
		Tokens:   tokens,
		DB:       db,
		MCP:      mcp.NewHTTPHandler(mcpServer),
	}))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})
	return ts
}

// MCPServices returns the services the MCP server is built from.
func (ts *TestServer) MCPServices() mcp.Services {
	return mcp.Services{Catalog: ts.Catalog, Progress: ts.Progress}
}

// Signup creates an account through the API and returns its id and token.
func (ts *TestServer) Signup(t *testing.T, username string) (string, string) {
	t.Helper()
	status, body := ts.Do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     username,
		"username": username,
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, status, "signup: %v", body)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

// AdminToken creates an admin account directly and returns a token for it.
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()
	user, err := ts.Accounts.Create(context.Background(), account.SignupRequest{
		Name: "Admin", Username: "admin", Password: "password1", Role: account.RoleAdmin,
	})
	require.NoError(t, err)
	token, err := ts.Tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// CreateActivity stores a catalog activity with the given number of steps.
func (ts *TestServer) CreateActivity(t *testing.T, title string, steps int) *catalog.Activity {
	t.Helper()
	req := catalog.CreateRequest{
		Title:         title,
		Description:   title + " description",
		Category:      catalog.CategoryMindfulness,
		Difficulty:    catalog.DifficultyEasy,
		EstimatedTime: 15,
	}
	for i := 1; i <= steps; i++ {
		req.Steps = append(req.Steps, catalog.Step{
			Title:       "Step",
			Description: "Do the thing",
			Tips:        []string{"Take your time"},
		})
	}
	act, err := ts.Catalog.Create(context.Background(), admin{}, req)
	require.NoError(t, err)
	return act
}

// Do sends a JSON request and decodes the JSON object response.
func (ts *TestServer) Do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type admin struct{}

func (admin) IsAdmin() bool { return true }
