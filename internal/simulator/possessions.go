package simulator

import "github.com/yourusername/courtside/internal/models"

// defaultPossessions is the league-average fallback when raw stats are too
// sparse to estimate pace.
const defaultPossessions = 100

// PossessionEstimator estimates a team's possession count for a game. The
// simulation's accuracy is bounded by this estimate, so it is pluggable
// rather than hard-coded.
type PossessionEstimator interface {
	Estimate(stats models.RawStats) int
}

// BoxScoreEstimator derives possessions from shooting volume:
// FGA − ORB + TO + 0.44·FTA, the standard box-score heuristic.
type BoxScoreEstimator struct{}

// Estimate implements PossessionEstimator. It prefers the raw shooting-volume
// estimate, falls back to the team's reported season pace, and finally to the
// league average.
func (BoxScoreEstimator) Estimate(stats models.RawStats) int {
	fga, okFGA := stats["field_goal_attempts"]
	fta, okFTA := stats["free_throw_attempts"]
	orb := stats["offensive_rebounds"]
	to := stats["turnovers"]
	if okFGA && okFTA {
		est := fga - orb + to + 0.44*fta
		if est >= 40 {
			return int(est + 0.5)
		}
	}
	if pace, ok := stats["season_pace"]; ok && pace >= 40 {
		return int(pace + 0.5)
	}
	return defaultPossessions
}

// FixedEstimator always returns the same possession count, useful for tests
// and neutral-pace simulations.
type FixedEstimator int

// Estimate implements PossessionEstimator.
func (f FixedEstimator) Estimate(models.RawStats) int { return int(f) }
