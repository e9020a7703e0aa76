package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mintworks-go/internal/factory"
	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/testutil"
	"github.com/mcoot/mintworks-go/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	router := web.NewRouter(web.RouterConfig{
		Logger:   testutil.NopLogger(),
		Sessions: app.Sessions,
	})

	return &webTestServer{t: t, handler: router, app: app}
}

// get makes a GET request and returns the response
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// parseHTML parses the response body as HTML
func (ts *webTestServer) parseHTML(rr *httptest.ResponseRecorder) *goquery.Document {
	ts.t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	require.NoError(ts.t, err)
	return doc
}

// createGame starts a two player game in which B acts first
func (ts *webTestServer) createGame(id string) model.GameID {
	ts.t.Helper()
	ts.app.MockIDs.Queue(id)
	gameID, err := ts.app.Sessions.CreateGame(context.Background(), []model.Player{
		{Name: "A", Age: 30, Tokens: 5},
		{Name: "B", Age: 25, Tokens: 5},
	})
	require.NoError(ts.t, err)
	return gameID
}

func TestRootRedirectsToGames(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/games", rr.Header().Get("Location"))
}

func TestGamesPageWithoutPlayerShowsForm(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	doc := ts.parseHTML(rr)
	assert.Equal(t, 1, doc.Find("form#lookup input[name=player]").Length())
	assert.Equal(t, 0, doc.Find("table#games").Length())
	assert.Equal(t, 0, doc.Find("p.empty").Length())
}

func TestGamesPageListsAwaitingGames(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGame("G2")
	ts.createGame("G1")

	doc := ts.parseHTML(ts.get("/games?player=B"))

	rows := doc.Find("tr.game")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "G1", rows.Eq(0).AttrOr("data-game-id", ""))
	assert.Equal(t, "G2", rows.Eq(1).AttrOr("data-game-id", ""))
	assert.Equal(t, "1", strings.TrimSpace(rows.Eq(0).Find("td.version").Text()))
	assert.Equal(t, "/api/G1/turn", rows.Eq(0).Find("a").AttrOr("href", ""))

	value, _ := doc.Find("input[name=player]").Attr("value")
	assert.Equal(t, "B", value)
}

func TestGamesPageEmptyForPlayerNotToAct(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGame("G1")

	doc := ts.parseHTML(ts.get("/games?player=A"))

	assert.Equal(t, 0, doc.Find("tr.game").Length())
	assert.Contains(t, doc.Find("p.empty").Text(), "A")
}

func TestGamesPageFollowsTurns(t *testing.T) {
	ts := newWebTestServer(t)
	id := ts.createGame("G1")

	turns, err := ts.app.Sessions.GetTurns(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, turns)
	require.NoError(t, ts.app.Sessions.ApplyTurn(context.Background(), id, turns[0]))

	assert.Equal(t, 0, ts.parseHTML(ts.get("/games?player=B")).Find("tr.game").Length())

	rows := ts.parseHTML(ts.get("/games?player=A")).Find("tr.game")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "2", strings.TrimSpace(rows.Find("td.version").Text()))
}

func TestGamesPageEscapesPlayerName(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games?player=%3Cscript%3Ealert(1)%3C%2Fscript%3E")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<script>")
	doc := ts.parseHTML(rr)
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Contains(t, doc.Find("p.empty").Text(), "<script>alert(1)</script>")
}

func TestGamesRejectsPost(t *testing.T) {
	ts := newWebTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/games", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestUnknownPageRendersErrorPage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/nowhere")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	doc := ts.parseHTML(rr)
	assert.Equal(t, "404", strings.TrimSpace(doc.Find("h1.error").Text()))
	assert.Equal(t, "/games", doc.Find("a").AttrOr("href", ""))
}
