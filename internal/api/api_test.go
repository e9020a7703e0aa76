package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mintworks-go/internal/api"
	"github.com/mcoot/mintworks-go/internal/api/apierr"
	"github.com/mcoot/mintworks-go/internal/api/response"
	"github.com/mcoot/mintworks-go/internal/factory"
	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/testutil"
)

// testServer wraps the API router over a test app with mocked dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:   testutil.NopLogger(),
		Sessions: app.Sessions,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createGame creates a two player game in which B acts first
func (ts *testServer) createGame(t *testing.T, id string) string {
	t.Helper()
	ts.app.MockIDs.Queue(id)

	rr := ts.request(http.MethodPost, "/api/game", map[string]any{
		"players": []map[string]any{
			{"name": "A", "age": 30, "tokens": 5},
			{"name": "B", "age": 25, "tokens": 5},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.GameID
}

func (ts *testServer) turns(t *testing.T, id string) []json.RawMessage {
	t.Helper()
	rr := ts.request(http.MethodGet, "/api/"+id+"/turn", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var turns []json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &turns))
	return turns
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	return resp
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	id := ts.createGame(t, "GAME01")

	assert.Equal(t, "GAME01", id)
	stored, err := ts.app.Memory.GetGame(t.Context(), "GAME01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, "B", stored.PlayerToAct)
}

func TestCreateGameRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/game", "{not json")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestCreateGameEngineInitFailure(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		players []map[string]any
	}{
		{"no players", nil},
		{"one player", []map[string]any{{"name": "A", "age": 30, "tokens": 5}}},
		{"duplicate names", []map[string]any{
			{"name": "A", "age": 30, "tokens": 5},
			{"name": "A", "age": 25, "tokens": 5},
		}},
		{"negative tokens", []map[string]any{
			{"name": "A", "age": 30, "tokens": -1},
			{"name": "B", "age": 25, "tokens": 5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/game", map[string]any{"players": tt.players})

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, apierr.CodeEngineInitError, decodeError(t, rr).Code)
		})
	}

	for _, player := range []string{"A", "B"} {
		ids, err := ts.app.Memory.ListGamesAwaiting(t.Context(), player)
		require.NoError(t, err)
		assert.Empty(t, ids)
	}
}

func TestListTurnsForNewGame(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	turns := ts.turns(t, id)

	require.Len(t, turns, 5)
	assert.JSONEq(t, `{"player":"B","action":"place","location":"producer"}`, string(turns[0]))
	assert.JSONEq(t, `{"player":"B","action":"pass"}`, string(turns[4]))
}

func TestListTurnsIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	first := ts.request(http.MethodGet, "/api/"+id+"/turn", nil)
	second := ts.request(http.MethodGet, "/api/"+id+"/turn", nil)

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
}

func TestListTurnsNotModified(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	rr := ts.request(http.MethodGet, "/api/"+id+"/turn", nil)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	cached := ts.request(http.MethodGet, "/api/"+id+"/turn", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())
	assert.Equal(t, etag, cached.Header().Get("ETag"))

	// A turn changes the offered turns, so the tag no longer matches
	turns := ts.turns(t, id)
	require.Equal(t, http.StatusOK, ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": turns[0]}).Code)

	fresh := ts.request(http.MethodGet, "/api/"+id+"/turn", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, fresh.Code)
	assert.NotEqual(t, etag, fresh.Header().Get("ETag"))
}

func TestListTurnsGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/missing/turn", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, decodeError(t, rr).Code)
}

func TestApplyTurn(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")
	turns := ts.turns(t, id)

	rr := ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": turns[0]})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	// Read-after-write: the next request sees the new state
	next := ts.turns(t, id)
	require.NotEmpty(t, next)
	var turn struct {
		Player string `json:"player"`
	}
	require.NoError(t, json.Unmarshal(next[0], &turn))
	assert.Equal(t, "A", turn.Player)

	stored, err := ts.app.Memory.GetGame(t.Context(), model.GameID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestApplyTurnGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPut, "/api/missing/turn", map[string]any{
		"turn": map[string]any{"player": "B", "action": "pass"},
	})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, decodeError(t, rr).Code)
}

func TestApplyTurnRejected(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	tests := []struct {
		name string
		turn any
	}{
		{"wrong player", map[string]any{"player": "A", "action": "pass"}},
		{"unaffordable plan", map[string]any{"player": "B", "action": "place", "location": "supplier", "plan": "Obelisk"}},
		{"unknown field", map[string]any{"player": "B", "action": "pass", "extra": true}},
		{"not an object", "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": tt.turn})

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, apierr.CodeInvalidTurn, decodeError(t, rr).Code)
		})
	}

	stored, err := ts.app.Memory.GetGame(t.Context(), model.GameID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestApplyTurnRequiresTurn(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	for _, body := range []string{`{}`, `{"turn":null}`, `[`} {
		rr := ts.request(http.MethodPut, "/api/"+id+"/turn", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
	}
}

func TestApplyTurnStaleTurnAfterRace(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")
	turns := ts.turns(t, id)

	// Two clients read the same turns; the second submission is no longer legal
	first := ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": turns[0]})
	second := ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": turns[0]})

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Equal(t, apierr.CodeInvalidTurn, decodeError(t, second).Code)
}

func TestGetGame(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	rr := ts.request(http.MethodGet, "/api/"+id, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp response.GameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "GAME01", resp.GameID)
	assert.Equal(t, "B", resp.PlayerToAct)
	assert.Equal(t, int64(1), resp.Version)
	assert.False(t, resp.Finished)
	assert.NotEmpty(t, resp.State)
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/missing", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, decodeError(t, rr).Code)
}

func TestListAwaiting(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "G2")
	ts.createGame(t, "G1")

	rr := ts.request(http.MethodGet, "/api/games?player=B", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp response.AwaitingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "B", resp.Player)
	assert.Equal(t, []string{"G1", "G2"}, resp.GameIDs)

	rr = ts.request(http.MethodGet, "/api/games?player=A", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"player":"A","gameIds":[]}`, rr.Body.String())
}

func TestListAwaitingRequiresPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/games", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/game"},
		{http.MethodPut, "/api/game"},
		{http.MethodDelete, "/api/game"},
		{http.MethodPost, "/api/" + id + "/turn"},
		{http.MethodDelete, "/api/" + id + "/turn"},
		{http.MethodPost, "/api/games"},
		{http.MethodPost, "/api/health"},
		{http.MethodPut, "/api/" + id},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path, nil)

			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, apierr.CodeMethodNotAllowed, decodeError(t, rr).Code)
		})
	}

	stored, err := ts.app.Memory.GetGame(t.Context(), model.GameID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestUnknownPath(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/api", "/api/a/b/c", "/nope"} {
		rr := ts.request(http.MethodGet, path, nil)

		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "X-Request-ID", "req-123")

	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
}

func TestPlayGameToCompletion(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createGame(t, "GAME01")

	var played int
	for ; played < 500; played++ {
		turns := ts.turns(t, id)
		if len(turns) == 0 {
			break
		}
		rr := ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{"turn": turns[0]})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	require.Less(t, played, 500)

	rr := ts.request(http.MethodGet, "/api/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `"finished":true`))

	rr = ts.request(http.MethodPut, "/api/"+id+"/turn", map[string]any{
		"turn": map[string]any{"player": "A", "action": "pass"},
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apierr.CodeInvalidTurn, decodeError(t, rr).Code)
}
