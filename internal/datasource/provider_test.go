package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(baseURL string) *ProviderClient {
	return NewProviderClient(&config.ProviderConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		TimeoutSeconds:  5,
		MaxRetries:      0, // no retry sleeps in tests
		RateLimitPerSec: 1000,
	}, quietLogger())
}

const finalGamePayload = `{
	"game_id": "g1",
	"home_team_id": "duke",
	"away_team_id": "unc",
	"home_score": 78,
	"away_score": 74,
	"status": "final",
	"context": {"conference_game": true, "season": 2026},
	"home_stats": {"season_points": 80.5},
	"away_stats": {"season_points": 74.1},
	"home_games_played": 18,
	"away_games_played": 17,
	"plays": [
		{"team_id": "duke", "event_type": "two_make", "points_value": 2, "shot_made": true},
		{"team_id": "unc", "event_type": "turnover"}
	]
}`

func TestFetchCompletedGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games/g1", r.URL.Path)
		assert.Equal(t, "stats,plays", r.URL.Query().Get("include"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(finalGamePayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	game, err := client.FetchCompletedGame(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, "g1", game.GameID)
	assert.Equal(t, "duke", game.HomeTeamID)
	assert.Equal(t, 78, game.HomeScore)
	assert.Equal(t, models.GameStatusFinal, game.Status)
	assert.True(t, game.Context.ConferenceGame)
	assert.Equal(t, 2026, game.Context.Season)
	assert.Equal(t, 18, game.HomeGamesPlayed)
	require.Len(t, game.Plays, 2)
	assert.Equal(t, "two_make", game.Plays[0].EventType)
	assert.True(t, game.IsComplete())
}

func TestFetchCompletedGameNotFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"game_id": "g1", "status": "in_progress"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCompletedGame(context.Background(), "g1")
	assert.ErrorIs(t, err, models.ErrGameNotFinished)
}

func TestFetchCompletedGameNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCompletedGame(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrGameNotFound)
}

func TestFetchCompletedGameServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCompletedGame(context.Background(), "g1")
	assert.ErrorIs(t, err, models.ErrTransientFetch)
}

func TestFetchCompletedGameRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCompletedGame(context.Background(), "g1")
	assert.ErrorIs(t, err, models.ErrTransientFetch)
}

func TestFetchGamesByDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games", r.URL.Path)
		assert.Equal(t, "2026-03-15", r.URL.Query().Get("date"))
		w.Write([]byte(`{"games": [{"game_id": "g1"}, {"game_id": "g2"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	ids, err := client.FetchGamesByDate(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, ids)
}

func TestFetchTeamStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/teams/duke/stats", r.URL.Path)
		w.Write([]byte(`{"team_id": "duke", "games_played": 18, "stats": {"season_points": 80.5, "last5_points": 84.2}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stats, games, err := client.FetchTeamStats(context.Background(), "duke")
	require.NoError(t, err)

	assert.Equal(t, 18, games)
	assert.Equal(t, 80.5, stats["season_points"])
	assert.Equal(t, 84.2, stats["last5_points"])
}

func TestRetryPolicyRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(finalGamePayload))
	}))
	defer server.Close()

	client := NewProviderClient(&config.ProviderConfig{
		BaseURL:         server.URL,
		TimeoutSeconds:  5,
		MaxRetries:      3,
		RateLimitPerSec: 1000,
	}, quietLogger())

	game, err := client.FetchCompletedGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", game.GameID)
	assert.Equal(t, 3, attempts)
}
