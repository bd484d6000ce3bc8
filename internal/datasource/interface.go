// Package datasource fetches game data from external sports data providers.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/courtside/internal/models"
)

// GameSource defines the interface for fetching game data from external providers
type GameSource interface {
	// FetchCompletedGame retrieves the full payload for one finished game.
	// Returns models.ErrGameNotFinished when the provider reports the game as
	// still in progress, models.ErrGameNotFound when the game does not exist,
	// and models.ErrTransientFetch for retryable provider failures.
	FetchCompletedGame(ctx context.Context, gameID string) (*models.CompletedGame, error)

	// FetchGamesByDate retrieves the IDs of games scheduled on the given date
	FetchGamesByDate(ctx context.Context, date time.Time) ([]string, error)

	// FetchTeamStats retrieves a team's current windowed statistics and the
	// number of games it has played this season
	FetchTeamStats(ctx context.Context, teamID string) (models.RawStats, int, error)

	// Name returns the name of the data source
	Name() string
}
