package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wintercup/portal/internal/domain"
)

func newTestServer(t *testing.T, botToken string) (*httptest.Server, *Backend) {
	t.Helper()
	backend := NewBackend()
	srv := httptest.NewServer(NewRouter(RouterDeps{Backend: backend, BotToken: botToken, Logger: noopLogger()}))
	t.Cleanup(srv.Close)
	return srv, backend
}

func do(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

func TestRobloxAuth(t *testing.T) {
	srv, _ := newTestServer(t, "")

	status, body := do(t, http.MethodPost, srv.URL+"/auth/roblox", map[string]any{
		"roblox_data": map[string]any{"id": 4242, "name": "builderman", "displayName": "Builder"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.EqualValues(t, 1, user["id"])
	assert.Equal(t, "Builder", user["first_name"])
	assert.Equal(t, "builderman", user["roblox_username"])

	// same roblox account maps to the same portal user
	_, body = do(t, http.MethodPost, srv.URL+"/auth/roblox", map[string]any{
		"roblox_data": map[string]any{"id": 4242, "name": "builderman"},
	})
	assert.EqualValues(t, 1, body["user"].(map[string]any)["id"])
	assert.Equal(t, "builderman", body["user"].(map[string]any)["first_name"])
}

func TestRobloxAuth_MissingID(t *testing.T) {
	srv, _ := newTestServer(t, "")
	status, body := do(t, http.MethodPost, srv.URL+"/auth/roblox", map[string]any{"roblox_data": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Roblox ID required", body["error"])
	assert.Nil(t, body["success"])
}

func TestTelegramAuth_Signature(t *testing.T) {
	const token = "123:ABC"
	srv, _ := newTestServer(t, token)

	data := map[string]any{
		"id":         json.Number("99"),
		"first_name": "Ann",
		"username":   "ann",
		"auth_date":  json.Number("1700000000"),
	}
	data["hash"] = TelegramHash(data, token)

	status, body := do(t, http.MethodPost, srv.URL+"/auth/telegram", map[string]any{"telegram_data": data})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ann", body["user"].(map[string]any)["first_name"])

	data["hash"] = strings.Repeat("0", 64)
	status, body = do(t, http.MethodPost, srv.URL+"/auth/telegram", map[string]any{"telegram_data": data})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid authentication", body["error"])
}

func TestTelegramAuth_NoTokenSkipsCheck(t *testing.T) {
	srv, _ := newTestServer(t, "")
	status, _ := do(t, http.MethodPost, srv.URL+"/auth/telegram", map[string]any{
		"telegram_data": map[string]any{"id": 5, "username": "x"},
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestVerifyTelegramAuth(t *testing.T) {
	data := map[string]any{"id": json.Number("1"), "auth_date": json.Number("2")}
	assert.False(t, VerifyTelegramAuth(data, "t"), "missing hash")
	data["hash"] = TelegramHash(data, "t")
	assert.True(t, VerifyTelegramAuth(data, "t"))
	assert.False(t, VerifyTelegramAuth(data, "other"))
}

func TestTournaments(t *testing.T) {
	srv, _ := newTestServer(t, "")
	_, auth := do(t, http.MethodPost, srv.URL+"/auth/roblox", map[string]any{
		"roblox_data": map[string]any{"id": 1, "name": "host"},
	})
	userID := auth["user"].(map[string]any)["id"]

	status, body := do(t, http.MethodPost, srv.URL+"/tournaments", map[string]any{
		"name": "Cup", "game_name": "Arsenal", "roblox_server_url": "http://x",
		"max_players": 16, "prize_robux": 0, "user_id": userID,
		"start_date": "2025-03-01T18:00",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	do(t, http.MethodPost, srv.URL+"/tournaments", map[string]any{
		"name": "Second", "game_name": "Arsenal", "roblox_server_url": "http://x",
		"max_players": 8, "user_id": userID,
	})

	status, body = do(t, http.MethodGet, srv.URL+"/tournaments", nil)
	require.Equal(t, http.StatusOK, status)
	list := body["tournaments"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "Second", first["name"])
	assert.Equal(t, "registration", first["status"])
	assert.Equal(t, "host", first["creator"].(map[string]any)["username"])
	assert.Equal(t, "2025-03-01T18:00:00Z", list[1].(map[string]any)["startDate"])
}

func TestCreateTournament_Rules(t *testing.T) {
	srv, _ := newTestServer(t, "")
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"blank name", map[string]any{"name": " ", "game_name": "g", "roblox_server_url": "u", "max_players": 16}, "All fields are required"},
		{"too few players", map[string]any{"name": "n", "game_name": "g", "roblox_server_url": "u", "max_players": 1}, "Max players must be between 2 and 1000"},
		{"too many players", map[string]any{"name": "n", "game_name": "g", "roblox_server_url": "u", "max_players": 1001}, "Max players must be between 2 and 1000"},
		{"negative prize", map[string]any{"name": "n", "game_name": "g", "roblox_server_url": "u", "max_players": 16, "prize_robux": -1}, "Prize must not be negative"},
		{"bad start date", map[string]any{"name": "n", "game_name": "g", "roblox_server_url": "u", "max_players": 16, "start_date": "tomorrow"}, "Invalid start date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, http.MethodPost, srv.URL+"/tournaments", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestVipServers(t *testing.T) {
	srv, _ := newTestServer(t, "")

	status, body := do(t, http.MethodPost, srv.URL+"/vip-servers", map[string]any{
		"game_name": "Arsenal", "server_url": "https://example.com/x", "user_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid Roblox server URL", body["error"])

	status, body = do(t, http.MethodPost, srv.URL+"/vip-servers", map[string]any{
		"game_name": "Arsenal", "server_url": "https://www.roblox.com/games/286090429", "user_id": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 50, body["max_players"])

	_, body = do(t, http.MethodGet, srv.URL+"/vip-servers", nil)
	list := body["servers"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Unknown", list[0].(map[string]any)["creator_name"])
}

func TestReports(t *testing.T) {
	srv, _ := newTestServer(t, "")

	status, body := do(t, http.MethodPost, srv.URL+"/reports", map[string]any{
		"reported_player": "griefer", "report_type": "cheating", "description": "", "user_id": 7,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields are required", body["error"])

	for _, uid := range []int{7, 7, 8} {
		status, _ = do(t, http.MethodPost, srv.URL+"/reports", map[string]any{
			"reported_player": "griefer", "report_type": domain.ReportToxicity, "description": "rude", "user_id": uid,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/reports?user_id=7", nil)
	assert.Len(t, body["reports"].([]any), 2)
	_, body = do(t, http.MethodGet, srv.URL+"/reports", nil)
	assert.Len(t, body["reports"].([]any), 3)

	status, _ = do(t, http.MethodGet, srv.URL+"/reports?user_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, "")
	status, body := do(t, http.MethodDelete, srv.URL+"/tournaments", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestHealth(t *testing.T) {
	srv, backend := newTestServer(t, "")
	backend.AddReport(1, "p", domain.ReportSpam, "d")
	status, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 1, body["counts"].(map[string]any)["reports"])
}
