package transport_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/testserver"
	"github.com/stretchr/testify/require"
)

type client struct {
	t     *testing.T
	ts    *testserver.TestServer
	token string
}

func (c client) do(method, path string, payload any) (int, map[string]any) {
	c.t.Helper()
	return c.ts.Do(c.t, method, path, c.token, payload)
}

func (c client) add(activityID string) (int, map[string]any) {
	c.t.Helper()
	return c.do(http.MethodPost, "/api/user-activities", map[string]string{"activityId": activityID})
}

func (c client) action(id, action string) map[string]any {
	c.t.Helper()
	status, body := c.do(http.MethodPost, fmt.Sprintf("/api/user-activities/%s/%s", id, action), nil)
	require.Equal(c.t, http.StatusOK, status, "%s: %v", action, body)
	return body["userActivity"].(map[string]any)
}

func (c client) toggle(id string, step int) (map[string]any, float64) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, fmt.Sprintf("/api/user-activities/%s/steps/%d/toggle", id, step), nil)
	require.Equal(c.t, http.StatusOK, status, "toggle: %v", body)
	return body["userActivity"].(map[string]any), body["percentComplete"].(float64)
}

func (c client) me() map[string]any {
	c.t.Helper()
	status, body := c.do(http.MethodGet, "/api/users/me", nil)
	require.Equal(c.t, http.StatusOK, status)
	return body["user"].(map[string]any)
}

func newClient(t *testing.T, ts *testserver.TestServer, username string) client {
	t.Helper()
	_, token := ts.Signup(t, username)
	return client{t: t, ts: ts, token: token}
}

func progressOf(ua map[string]any) map[string]any {
	return ua["progress"].(map[string]any)
}

func TestScenario_CompleteUncompleteConflictReset(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Three step routine", 3)
	alice := newClient(t, ts, "alice")

	// Scenario A
	status, body := alice.add(act.ID)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, false, body["isReset"])
	ua := body["userActivity"].(map[string]any)
	require.Equal(t, string(progress.StatusAdded), ua["status"])
	id := ua["id"].(string)

	ua = alice.action(id, "start")
	require.Equal(t, string(progress.StatusInProgress), ua["status"])
	require.NotNil(t, progressOf(ua)["startedAt"])
	require.EqualValues(t, 3, progressOf(ua)["totalSteps"])

	alice.toggle(id, 1)
	ua, percent := alice.toggle(id, 2)
	require.EqualValues(t, 67, percent)
	require.Equal(t, string(progress.StatusInProgress), ua["status"])

	ua, percent = alice.toggle(id, 3)
	require.EqualValues(t, 100, percent)
	require.Equal(t, string(progress.StatusCompleted), ua["status"])
	require.NotNil(t, ua["completedAt"])

	user := alice.me()
	require.EqualValues(t, 1, user["streak"].(map[string]any)["current"])
	require.Contains(t, user["badges"], progress.BadgeFirstStep)
	require.NotContains(t, user, "password")

	// Scenario B
	ua, percent = alice.toggle(id, 3)
	require.EqualValues(t, 67, percent)
	require.Equal(t, string(progress.StatusInProgress), ua["status"])
	require.Nil(t, ua["completedAt"])
	require.Contains(t, alice.me()["badges"], progress.BadgeFirstStep)

	// Scenario C
	status, body = alice.add(act.ID)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Activity already in your list", body["message"])
	require.Equal(t, string(progress.StatusInProgress), body["status"])

	status, body = alice.do(http.MethodGet, "/api/user-activities", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["userActivities"], 1)

	// Scenario D
	alice.toggle(id, 3)
	status, body = alice.add(act.ID)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["isReset"])
	ua = body["userActivity"].(map[string]any)
	require.Equal(t, id, ua["id"])
	require.Equal(t, string(progress.StatusAdded), ua["status"])
	require.Empty(t, progressOf(ua)["completedSteps"])
	require.Nil(t, ua["completedAt"])
	require.Nil(t, progressOf(ua)["startedAt"])
}

func TestScenario_SkipResumeStart(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Evening walk", 2)
	alice := newClient(t, ts, "alice")

	_, body := alice.add(act.ID)
	id := body["userActivity"].(map[string]any)["id"].(string)

	ua := alice.action(id, "skip")
	require.Equal(t, string(progress.StatusSkipped), ua["status"])

	ua = alice.action(id, "resume")
	require.Equal(t, string(progress.StatusAdded), ua["status"])
	require.Nil(t, progressOf(ua)["startedAt"])

	ua = alice.action(id, "start")
	require.Equal(t, string(progress.StatusInProgress), ua["status"])
	require.NotNil(t, progressOf(ua)["startedAt"])

	status, body := alice.do(http.MethodPost, "/api/user-activities/"+id+"/start", nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, string(progress.StatusInProgress), body["status"])
}

func TestScenario_RemoveIsIdempotentNotFound(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Gratitude list", 1)
	alice := newClient(t, ts, "alice")

	_, body := alice.add(act.ID)
	id := body["userActivity"].(map[string]any)["id"].(string)

	status, body := alice.do(http.MethodDelete, "/api/user-activities/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, id, body["deletedId"])

	for i := 0; i < 2; i++ {
		status, _ = alice.do(http.MethodDelete, "/api/user-activities/"+id, nil)
		require.Equal(t, http.StatusNotFound, status)
	}
}

func TestScenario_OwnershipAndAuth(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Cold shower", 1)
	alice := newClient(t, ts, "alice")
	bob := newClient(t, ts, "bob")

	_, body := alice.add(act.ID)
	id := body["userActivity"].(map[string]any)["id"].(string)

	status, _ := bob.do(http.MethodPost, "/api/user-activities/"+id+"/start", nil)
	require.Equal(t, http.StatusNotFound, status)

	anonymous := client{t: t, ts: ts}
	status, _ = anonymous.do(http.MethodGet, "/api/user-activities", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = anonymous.do(http.MethodGet, "/api/activities", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["total"])
}

func TestScenario_ToggleErrors(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Sketching", 2)
	alice := newClient(t, ts, "alice")

	_, body := alice.add(act.ID)
	id := body["userActivity"].(map[string]any)["id"].(string)

	status, _ := alice.do(http.MethodPost, "/api/user-activities/"+id+"/steps/1/toggle", nil)
	require.Equal(t, http.StatusConflict, status)

	alice.action(id, "start")
	status, _ = alice.do(http.MethodPost, "/api/user-activities/"+id+"/steps/3/toggle", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = alice.do(http.MethodPost, "/api/user-activities/"+id+"/steps/one/toggle", nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAccounts(t *testing.T) {
	ts := testserver.New(t)
	alice := newClient(t, ts, "alice")

	status, _ := ts.Do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Other Alice", "username": "alice", "password": "password1",
	})
	require.Equal(t, http.StatusConflict, status)

	status, body := ts.Do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Carol", "username": "carol", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "password", body["field"])

	status, _ = ts.Do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = ts.Do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])

	status, body = alice.do(http.MethodPut, "/api/users/me", map[string]any{
		"name":        "Alice A.",
		"preferences": map[string]any{"skillGoals": []string{"Fitness"}, "availableTime": 45},
	})
	require.Equal(t, http.StatusOK, status)
	prefs := body["user"].(map[string]any)["preferences"].(map[string]any)
	require.EqualValues(t, 45, prefs["availableTime"])
	require.Equal(t, "Medium", prefs["difficultyPreference"])

	status, _ = alice.do(http.MethodPut, "/api/users/me/password", map[string]string{"currentPassword": "wrong1", "newPassword": "password2"})
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = alice.do(http.MethodPut, "/api/users/me/password", map[string]string{"currentPassword": "password1", "newPassword": "password2"})
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.Do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password2"})
	require.Equal(t, http.StatusOK, status)
}

func TestAccounts_DeleteRemovesUserActivities(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Meditation", 1)
	userID, token := ts.Signup(t, "alice")
	alice := client{t: t, ts: ts, token: token}

	status, _ := alice.add(act.ID)
	require.Equal(t, http.StatusCreated, status)

	status, _ = alice.do(http.MethodDelete, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, status)

	var count int
	require.NoError(t, ts.DB.QueryRow(`SELECT COUNT(*) FROM user_activities WHERE user_id = ?`, userID).Scan(&count))
	require.Zero(t, count)

	status, _ = alice.do(http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestCatalogAdmin(t *testing.T) {
	ts := testserver.New(t)
	adminToken := ts.AdminToken(t)
	alice := newClient(t, ts, "alice")
	admin := client{t: t, ts: ts, token: adminToken}

	activity := map[string]any{
		"title":         "Desk stretches",
		"description":   "Loosen up between meetings",
		"category":      "Fitness",
		"difficulty":    "Easy",
		"estimatedTime": 10,
		"steps": []map[string]any{
			{"title": "Neck rolls", "description": "Slow circles", "tips": []string{"Breathe"}},
			{"title": "Shoulder shrugs", "description": "Up and down", "tips": []string{"  "}},
		},
	}

	status, _ := alice.do(http.MethodPost, "/api/activities", activity)
	require.Equal(t, http.StatusForbidden, status)

	status, body := admin.do(http.MethodPost, "/api/activities", activity)
	require.Equal(t, http.StatusBadRequest, status)
	require.EqualValues(t, 2, body["stepIndex"])

	activity["steps"].([]map[string]any)[1]["tips"] = []string{"Relax your jaw"}
	status, body = admin.do(http.MethodPost, "/api/activities", activity)
	require.Equal(t, http.StatusCreated, status)
	created := body["activity"].(map[string]any)
	require.Len(t, created["steps"], 2)

	status, body = admin.do(http.MethodPatch, "/api/activities/"+created["id"].(string), map[string]any{"estimatedTime": 12})
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 12, body["activity"].(map[string]any)["estimatedTime"])

	status, _ = alice.do(http.MethodGet, "/api/activities/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestHistoryAndStats(t *testing.T) {
	ts := testserver.New(t)
	act := ts.CreateActivity(t, "Reading", 1)
	alice := newClient(t, ts, "alice")

	_, body := alice.add(act.ID)
	id := body["userActivity"].(map[string]any)["id"].(string)
	alice.action(id, "start")
	alice.toggle(id, 1)

	status, body := alice.do(http.MethodGet, "/api/user-activities/history?type=activity_started", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["entries"], 1)

	status, body = alice.do(http.MethodGet, "/api/user-activities/history", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["entries"], 4)

	status, _ = alice.do(http.MethodGet, "/api/user-activities/history?type=bogus", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, body = alice.do(http.MethodGet, "/api/user-activities/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]any)
	require.EqualValues(t, 1, stats["completedToday"])
	require.EqualValues(t, 1, stats["totalCompleted"])

	status, body = alice.do(http.MethodGet, "/api/user-activities?status=completed", nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["userActivities"].([]any)
	require.Len(t, entries, 1)
	require.Equal(t, "Reading", entries[0].(map[string]any)["activity"].(map[string]any)["title"])
}
