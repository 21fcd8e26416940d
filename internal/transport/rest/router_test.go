package rest

import (
	"bigbrain/internal/clock"
	"bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/service"
	"bigbrain/internal/store"
	"bigbrain/internal/transport/rest/middleware"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	clock  *clock.Fake
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	docs := store.NewDocuments(store.NewMemoryStore(), 3)
	locker := lock.New(0)
	ids := idgen.New()
	clk := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.DefaultEngineConfig()
	log := zerolog.Nop()
	events := service.NewNotifier(log)

	games := service.NewGameService(docs, locker, ids, cfg.IDBounds, log)
	sessions := service.NewSessionService(docs, locker, ids, clk, cfg, games, events, log)
	t.Cleanup(sessions.Close)

	handler := NewRouter(&Container{
		AuthService:    service.NewAuthService(docs, locker, clk, "test-secret"),
		GameService:    games,
		SessionService: sessions,
		PlayerService:  service.NewPlayerService(docs, locker, ids, clk, cfg.IDBounds, events),
		Log:            log,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server, clock: clk}
}

// do sends a JSON request and decodes the response body into out when given
func (c *apiClient) do(method, path, token string, body, out interface{}) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.server.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (c *apiClient) register(email string) string {
	c.t.Helper()
	var tok struct {
		Token string `json:"token"`
	}
	resp := c.do("POST", "/admin/auth/register", "", map[string]string{
		"email": email, "password": "hunter2", "name": "Ada",
	}, &tok)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(c.t, tok.Token)
	return tok.Token
}

type errorBody struct {
	Error string `json:"error"`
}

func TestGameplayOverHTTP(t *testing.T) {
	api := newAPI(t)
	token := api.register("ada@example.com")

	games := map[string]interface{}{
		"games": []map[string]interface{}{{
			"name":  "Capitals",
			"owner": "ada@example.com",
			"questions": []map[string]interface{}{{
				"text":           "Capital of France?",
				"type":           "single",
				"duration":       10,
				"points":         5,
				"answers":        []map[string]interface{}{{"text": "Paris", "correct": true}, {"text": "Lyon"}},
				"correctAnswers": []string{"Paris"},
			}},
		}},
	}
	resp := api.do("PUT", "/admin/games", token, games, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Games []struct {
			ID     int64  `json:"id"`
			Name   string `json:"name"`
			Active *int64 `json:"active"`
		} `json:"games"`
	}
	resp = api.do("GET", "/admin/games", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Games, 1)
	assert.Equal(t, "Capitals", list.Games[0].Name)
	assert.Nil(t, list.Games[0].Active)
	gameID := list.Games[0].ID

	var started struct {
		Data struct {
			Status    string `json:"status"`
			SessionID int64  `json:"sessionId"`
		} `json:"data"`
	}
	resp = api.do("POST", fmt.Sprintf("/admin/game/%d/mutate", gameID), token, map[string]string{"mutationType": "START"}, &started)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "started", started.Data.Status)
	sessionID := started.Data.SessionID

	var joined struct {
		PlayerID int64 `json:"playerId"`
	}
	resp = api.do("POST", fmt.Sprintf("/play/join/%d", sessionID), "", map[string]string{"name": "Alice"}, &joined)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	player := fmt.Sprintf("/play/%d", joined.PlayerID)

	var status struct {
		Started bool `json:"started"`
	}
	api.do("GET", player+"/status", "", nil, &status)
	assert.False(t, status.Started)

	var advanced struct {
		Data struct {
			Position int `json:"position"`
		} `json:"data"`
	}
	resp = api.do("POST", fmt.Sprintf("/admin/game/%d/mutate", gameID), token, map[string]string{"mutationType": "advance"}, &advanced)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, advanced.Data.Position)

	api.do("GET", player+"/status", "", nil, &status)
	assert.True(t, status.Started)

	var q struct {
		Question map[string]interface{} `json:"question"`
	}
	resp = api.do("GET", player+"/question", "", nil, &q)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Capital of France?", q.Question["text"])
	assert.NotContains(t, q.Question, "correctAnswers")
	assert.Contains(t, q.Question, "isoTimeLastQuestionStarted")

	var e errorBody
	resp = api.do("GET", player+"/answer", "", nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Answers are not available yet", e.Error)

	resp = api.do("PUT", player+"/answer", "", map[string]interface{}{"answers": []string{"Paris"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	api.clock.Advance(10 * time.Second)

	var answers struct {
		Answers []string `json:"answers"`
	}
	resp = api.do("GET", player+"/answer", "", nil, &answers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Paris"}, answers.Answers)

	var board struct {
		Leaderboard []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"leaderboard"`
	}
	resp = api.do("GET", fmt.Sprintf("/admin/session/%d/leaderboard", sessionID), token, nil, &board)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, float64(5), board.Leaderboard[0].Score)

	resp = api.do("POST", fmt.Sprintf("/admin/game/%d/mutate", gameID), token, map[string]string{"mutationType": "END"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []struct {
		Correct bool `json:"correct"`
	}
	resp = api.do("GET", player+"/results", "", nil, &results)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, results, 1)
	assert.True(t, results[0].Correct)

	var sessionResults struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	resp = api.do("GET", fmt.Sprintf("/admin/session/%d/results", sessionID), token, nil, &sessionResults)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, sessionResults.Results, 1)
	assert.Equal(t, "Alice", sessionResults.Results[0].Name)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	api := newAPI(t)

	var e errorBody
	resp := api.do("GET", "/admin/games", "", nil, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEmpty(t, e.Error)

	resp = api.do("GET", "/admin/games", "not-a-jwt", nil, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid token", e.Error)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	api := newAPI(t)
	token := api.register("ada@example.com")

	resp := api.do("POST", "/admin/auth/logout", token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do("GET", "/admin/games", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSessionRoutesCheckOwnership(t *testing.T) {
	api := newAPI(t)
	ada := api.register("ada@example.com")
	bob := api.register("bob@example.com")

	api.do("PUT", "/admin/games", ada, map[string]interface{}{
		"games": []map[string]interface{}{{"name": "Mine", "owner": "ada@example.com", "questions": []interface{}{}}},
	}, nil)
	var list struct {
		Games []struct {
			ID int64 `json:"id"`
		} `json:"games"`
	}
	api.do("GET", "/admin/games", ada, nil, &list)
	require.Len(t, list.Games, 1)

	var e errorBody
	resp := api.do("POST", fmt.Sprintf("/admin/game/%d/mutate", list.Games[0].ID), bob, map[string]string{"mutationType": "START"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Admin does not own this Game", e.Error)

	resp = api.do("GET", "/admin/session/123/status", ada, nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid session ID", e.Error)
}

func TestLoginErrors(t *testing.T) {
	api := newAPI(t)
	api.register("ada@example.com")

	var e errorBody
	resp := api.do("POST", "/admin/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", e.Error)

	resp = api.do("POST", "/admin/auth/register", "", map[string]string{"email": "ada@example.com", "password": "x"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email address already registered", e.Error)
}

func TestRequestIDAndDocs(t *testing.T) {
	api := newAPI(t)

	resp := api.do("GET", "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	req, err := http.NewRequest("GET", api.server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(middleware.RequestIDHeader))

	var doc map[string]interface{}
	resp = api.do("GET", "/swagger/doc.json", "", nil, &doc)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, doc, "paths")

	resp = api.do("OPTIONS", "/admin/games", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
