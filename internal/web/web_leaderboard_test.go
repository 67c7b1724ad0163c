package web_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxgrid/tictactoe/internal/model"
)

func TestLeaderboardEmpty(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/leaderboard")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assert.Equal(t, "No players yet. Be the first to play!", doc.Find(".leaderboard .empty").Text())
	assert.Equal(t, 0, doc.Find(".leaderboard-table").Length())
}

func TestLeaderboardRanksPlayers(t *testing.T) {
	ts := newWebTestServer(t)
	ctx := context.Background()
	svc := ts.app.StatsService

	record := func(name string, results ...model.GameResult) {
		p, err := svc.CreatePlayer(ctx, name)
		require.NoError(t, err)
		for _, r := range results {
			_, err := svc.UpdatePlayerStats(ctx, p.ID, r)
			require.NoError(t, err)
		}
	}
	record("Carol", model.ResultWin, model.ResultLoss, model.ResultLoss)
	record("Alice", model.ResultWin, model.ResultWin)
	record("Bob", model.ResultWin, model.ResultTie)
	record("<script>", model.ResultLoss)

	rr := ts.get("/leaderboard")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)

	rows := doc.Find(".leaderboard-table tbody tr")
	require.Equal(t, 4, rows.Length())

	var names, rates []string
	rows.Each(func(_ int, row *goquery.Selection) {
		names = append(names, row.Find(".player-name").Text())
		rates = append(rates, row.Find(".win-rate").Text())
	})
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "<script>"}, names)
	assert.Equal(t, []string{"100.0%", "50.0%", "33.3%", "0.0%"}, rates)
	assert.Equal(t, "1", rows.First().Find(".rank").Text())
	assert.Equal(t, "2", rows.First().Find(".total").Text())

	// Names are escaped, never interpreted
	assert.Equal(t, 0, doc.Find("main script").Length())
}

func TestLeaderboardLimit(t *testing.T) {
	ts := newWebTestServer(t)
	for _, name := range []string{"A", "B", "C"} {
		_, err := ts.app.StatsService.CreatePlayer(context.Background(), name)
		require.NoError(t, err)
	}

	doc := parseHTML(ts.get("/leaderboard?limit=2").Body)
	assert.Equal(t, 2, doc.Find(".leaderboard-table tbody tr").Length())

	doc = parseHTML(ts.get("/leaderboard?limit=abc").Body)
	assert.Equal(t, 3, doc.Find(".leaderboard-table tbody tr").Length())
}

func TestLeaderboardHighlightsCurrentPlayerInHeader(t *testing.T) {
	ts := newWebTestServer(t)
	ts.setupPlayer("Alice")

	doc := parseHTML(ts.get("/leaderboard").Body)
	assert.Equal(t, "Alice", doc.Find("header .player-name").Text())
}
