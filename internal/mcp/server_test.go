package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/auth"
	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/mcp"
	"github.com/rpggio/stepwise/internal/testserver"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, ts *testserver.TestServer, session *auth.Session) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(mcp.Config{
		Services:      ts.MCPServices(),
		TransportMode: "stdio",
		StdioSession:  session,
	})
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

// callTool returns the decoded JSON payload, or the error text for tool errors.
func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) (map[string]any, string) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s", name)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	if result.IsError {
		return nil, text.Text
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, ""
}

func sessionFor(t *testing.T, ts *testserver.TestServer, username string) *auth.Session {
	t.Helper()
	userID, _ := ts.Signup(t, username)
	return &auth.Session{UserID: userID, Username: username}
}

func TestServer_ListsTools(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts, sessionFor(t, ts, "alice"))

	result, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"list_catalog", "add_activity", "start_activity", "toggle_step", "complete_activity",
		"skip_activity", "resume_activity", "remove_activity", "list_my_activities", "get_stats",
	}, names)
}

func TestServer_LifecycleThroughTools(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Breathing", 2)
	cs := connect(t, ts, sessionFor(t, ts, "alice"))

	catalogOut, errText := callTool(t, cs, "list_catalog", map[string]any{"category": "Mindfulness"})
	require.Empty(t, errText)
	require.EqualValues(t, 1, catalogOut["total"])

	added, errText := callTool(t, cs, "add_activity", map[string]any{"activity_id": act.ID})
	require.Empty(t, errText)
	require.Equal(t, false, added["is_reset"])
	uaID := added["user_activity"].(map[string]any)["id"].(string)

	_, errText = callTool(t, cs, "add_activity", map[string]any{"activity_id": act.ID})
	require.Contains(t, errText, "ALREADY_IN_LIST")

	_, errText = callTool(t, cs, "start_activity", map[string]any{"user_activity_id": uaID})
	require.Empty(t, errText)

	toggled, errText := callTool(t, cs, "toggle_step", map[string]any{"user_activity_id": uaID, "step_number": 1})
	require.Empty(t, errText)
	require.EqualValues(t, 50, toggled["percent_complete"])

	_, errText = callTool(t, cs, "toggle_step", map[string]any{"user_activity_id": uaID, "step_number": 9})
	require.Contains(t, errText, "STEP_NOT_FOUND")

	toggled, errText = callTool(t, cs, "toggle_step", map[string]any{"user_activity_id": uaID, "step_number": 2})
	require.Empty(t, errText)
	require.EqualValues(t, 100, toggled["percent_complete"])
	require.Equal(t, string(progress.StatusCompleted), toggled["user_activity"].(map[string]any)["status"])

	statsOut, errText := callTool(t, cs, "get_stats", nil)
	require.Empty(t, errText)
	stats := statsOut["stats"].(map[string]any)
	require.EqualValues(t, 1, stats["completedToday"])
	require.EqualValues(t, 1, stats["currentStreak"])
	require.Contains(t, stats["badges"], progress.BadgeFirstStep)

	reset, errText := callTool(t, cs, "add_activity", map[string]any{"activity_id": act.ID})
	require.Empty(t, errText)
	require.Equal(t, true, reset["is_reset"])

	list, errText := callTool(t, cs, "list_my_activities", map[string]any{"status": "added"})
	require.Empty(t, errText)
	require.Len(t, list["user_activities"], 1)

	removed, errText := callTool(t, cs, "remove_activity", map[string]any{"user_activity_id": uaID})
	require.Empty(t, errText)
	require.Equal(t, uaID, removed["deleted_id"])

	_, errText = callTool(t, cs, "remove_activity", map[string]any{"user_activity_id": uaID})
	require.Contains(t, errText, "NOT_FOUND")
}

func TestServer_InvalidTransition(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Journaling", 1)
	cs := connect(t, ts, sessionFor(t, ts, "alice"))

	added, _ := callTool(t, cs, "add_activity", map[string]any{"activity_id": act.ID})
	uaID := added["user_activity"].(map[string]any)["id"].(string)

	_, errText := callTool(t, cs, "resume_activity", map[string]any{"user_activity_id": uaID})
	require.Contains(t, errText, "INVALID_TRANSITION")

	_, errText = callTool(t, cs, "skip_activity", map[string]any{"user_activity_id": uaID})
	require.Empty(t, errText)
	resumed, errText := callTool(t, cs, "resume_activity", map[string]any{"user_activity_id": uaID})
	require.Empty(t, errText)
	require.Equal(t, string(progress.StatusAdded), resumed["user_activity"].(map[string]any)["status"])
}

func TestServer_RequiresSession(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts, nil)

	_, errText := callTool(t, cs, "get_stats", nil)
	require.Contains(t, errText, "UNAUTHORIZED")
}

func TestServer_UsersAreIsolated(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Stretching", 1)

	alice := connect(t, ts, sessionFor(t, ts, "alice"))
	bob := connect(t, ts, sessionFor(t, ts, "bob"))

	added, _ := callTool(t, alice, "add_activity", map[string]any{"activity_id": act.ID})
	uaID := added["user_activity"].(map[string]any)["id"].(string)

	_, errText := callTool(t, bob, "start_activity", map[string]any{"user_activity_id": uaID})
	require.Contains(t, errText, "NOT_FOUND")
}

func TestServer_LifecycleDoc(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts, nil)

	result, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "stepwise://docs/lifecycle"})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	require.Contains(t, result.Contents[0].Text, "# Activity lifecycle")
}

func TestMapError(t *testing.T) {
	require.Nil(t, mcp.MapError(nil))
	require.Nil(t, mcp.MapError(errors.New("disk full")))

	apiErr := mcp.MapError(&progress.ConflictError{Status: progress.StatusSkipped})
	require.Equal(t, "ALREADY_IN_LIST", apiErr.Code)
	require.Equal(t, map[string]any{"status": progress.StatusSkipped}, apiErr.Details)

	apiErr = mcp.MapError(&progress.TransitionError{Op: "start", From: progress.StatusCompleted})
	require.Equal(t, "INVALID_TRANSITION", apiErr.Code)

	require.Equal(t, "STALE_REVISION", mcp.MapError(progress.ErrStaleRevision).Code)
}
