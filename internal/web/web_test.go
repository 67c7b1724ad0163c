package web_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/oxgrid/tictactoe/internal/factory"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage/memory"
	"github.com/oxgrid/tictactoe/internal/testutil"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	store   *flakyStore
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	store := &flakyStore{Storage: memory.New()}
	app := factory.NewTestAppWith(factory.TestConfig(), store, testutil.NopLogger())

	return &webTestServer{
		t:       t,
		handler: app.Handler(),
		app:     app,
		store:   store,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request as a browser would and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// followRedirect follows a redirect response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect")
	return ts.get(rr.Header().Get("Location"))
}

// setupPlayer registers a player through the setup form
func (ts *webTestServer) setupPlayer(name string) *model.Player {
	ts.t.Helper()
	rr := ts.post("/play/setup", url.Values{"name": {name}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after setup")
	require.True(ts.t, ts.cookies.has("ttt_player"), "Expected player cookie to be set")

	player, err := ts.app.StatsService.GetPlayerByName(context.Background(), name)
	require.NoError(ts.t, err)
	return player
}

// move posts one move against the given board
func (ts *webTestServer) move(board, turn, sync, opponent string, pos int) *httptest.ResponseRecorder {
	form := url.Values{
		"board":    {board},
		"turn":     {turn},
		"sync":     {sync},
		"opponent": {opponent},
		"pos":      {strconv.Itoa(pos)},
	}
	return ts.post("/play/move", form)
}

func (ts *webTestServer) player(id model.PlayerID) *model.Player {
	ts.t.Helper()
	p, err := ts.app.StatsService.GetPlayer(context.Background(), id)
	require.NoError(ts.t, err)
	return p
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

func (j *cookieJar) has(name string) bool {
	_, ok := j.cookies[name]
	return ok
}

var errStoreDown = errors.New("store down")

// flakyStore is a memory store whose reads and updates can be made to fail
type flakyStore struct {
	*memory.Storage
	failUpdates atomic.Bool
	failReads   atomic.Bool
}

func (s *flakyStore) IncrementStats(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	if s.failUpdates.Load() {
		return nil, errStoreDown
	}
	return s.Storage.IncrementStats(ctx, id, result)
}

func (s *flakyStore) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if s.failReads.Load() {
		return nil, errStoreDown
	}
	return s.Storage.GetPlayer(ctx, id)
}

func (s *flakyStore) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if s.failReads.Load() {
		return nil, errStoreDown
	}
	return s.Storage.TopPlayers(ctx, limit)
}
