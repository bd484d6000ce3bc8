package models

import (
	"time"
)

// GameStatus represents the lifecycle state of a game as reported by the provider.
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
)

// RawStats is the loosely-typed statistics record returned by the data provider.
// The feature builder converts it into a fixed-order FeatureVector via a
// versioned schema; nothing else should read it directly.
type RawStats map[string]float64

// Play is a single recorded play-by-play event.
type Play struct {
	Period      int     `json:"period"`
	Clock       string  `json:"clock"`
	TeamID      string  `json:"team_id"`
	EventType   string  `json:"event_type"`
	PointsValue int     `json:"points_value"`
	ShotMade    bool    `json:"shot_made"`
	Distance    float64 `json:"distance,omitempty"`
}

// GameContext carries situational signals that feed the transition predictor.
type GameContext struct {
	NeutralSite    bool `json:"neutral_site"`
	Postseason     bool `json:"postseason"`
	ConferenceGame bool `json:"conference_game"`
	Season         int  `json:"season"`
}

// Vector renders the context as the fixed-length input slice the predictor expects.
func (c GameContext) Vector() []float64 {
	v := make([]float64, ContextDim)
	if c.NeutralSite {
		v[0] = 1
	}
	if c.Postseason {
		v[1] = 1
	}
	if c.ConferenceGame {
		v[2] = 1
	}
	return v
}

// ContextDim is the fixed length of GameContext.Vector output.
const ContextDim = 3

// CompletedGame is the full payload for one finished game fetched from the provider.
type CompletedGame struct {
	GameID     string      `json:"game_id"`
	HomeTeamID string      `json:"home_team_id"`
	AwayTeamID string      `json:"away_team_id"`
	HomeScore  int         `json:"home_score"`
	AwayScore  int         `json:"away_score"`
	Status     GameStatus  `json:"status"`
	Context    GameContext `json:"context"`
	HomeStats  RawStats    `json:"home_stats"`
	AwayStats  RawStats    `json:"away_stats"`
	// Season games played per side, used by the feature builder's
	// minimum-history gate.
	HomeGamesPlayed int       `json:"home_games_played"`
	AwayGamesPlayed int       `json:"away_games_played"`
	Plays           []Play    `json:"plays"`
	PlayedAt        time.Time `json:"played_at"`
}

// IsComplete reports whether the game payload is usable for a model update:
// final status, non-degenerate scores, and at least one recorded play.
func (g *CompletedGame) IsComplete() bool {
	if g.Status != GameStatusFinal {
		return false
	}
	if g.HomeScore <= 0 && g.AwayScore <= 0 {
		return false
	}
	return len(g.Plays) > 0
}
