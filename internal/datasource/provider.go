package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

// ProviderClient fetches college basketball game data over the provider's
// JSON REST API. It satisfies GameSource.
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *RateLimitedHTTPClient
	logger     *logrus.Logger
}

// NewProviderClient creates a provider client from configuration
func NewProviderClient(cfg *config.ProviderConfig, logger *logrus.Logger) *ProviderClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimitPerSec

	return &ProviderClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		logger:     logger,
	}
}

// Name returns the name of the data source
func (p *ProviderClient) Name() string {
	return "provider"
}

// FetchCompletedGame retrieves the full payload for one finished game
func (p *ProviderClient) FetchCompletedGame(ctx context.Context, gameID string) (*models.CompletedGame, error) {
	url := fmt.Sprintf("%s/v1/games/%s?include=stats,plays", p.baseURL, gameID)

	body, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}

	game := &models.CompletedGame{}
	if err := json.Unmarshal(body, game); err != nil {
		return nil, fmt.Errorf("failed to parse game payload: %w", err)
	}

	if game.Status != models.GameStatusFinal {
		p.logger.WithFields(logrus.Fields{
			"game_id": gameID,
			"status":  game.Status,
		}).Debug("Game not yet final")
		return nil, fmt.Errorf("game %s: %w", gameID, models.ErrGameNotFinished)
	}

	return game, nil
}

// FetchGamesByDate retrieves the IDs of games scheduled on the given date
func (p *ProviderClient) FetchGamesByDate(ctx context.Context, date time.Time) ([]string, error) {
	url := fmt.Sprintf("%s/v1/games?date=%s", p.baseURL, date.Format("2006-01-02"))

	body, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Games []struct {
			GameID string `json:"game_id"`
		} `json:"games"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse games list: %w", err)
	}

	ids := make([]string, 0, len(payload.Games))
	for _, g := range payload.Games {
		ids = append(ids, g.GameID)
	}
	return ids, nil
}

// FetchTeamStats retrieves a team's windowed statistics and games played
func (p *ProviderClient) FetchTeamStats(ctx context.Context, teamID string) (models.RawStats, int, error) {
	url := fmt.Sprintf("%s/v1/teams/%s/stats?windows=season,last10,last5", p.baseURL, teamID)

	body, err := p.get(ctx, url)
	if err != nil {
		return nil, 0, err
	}

	var payload struct {
		TeamID      string          `json:"team_id"`
		GamesPlayed int             `json:"games_played"`
		Stats       models.RawStats `json:"stats"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("failed to parse team stats: %w", err)
	}

	return payload.Stats, payload.GamesPlayed, nil
}

// get performs an authenticated GET and classifies provider failures
func (p *ProviderClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.ErrGameNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned status %d", models.ErrTransientFetch, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("provider returned unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", models.ErrTransientFetch, err)
	}

	return body, nil
}
