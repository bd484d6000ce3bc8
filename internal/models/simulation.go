package models

import "sort"

// SimulationResult aggregates the outcome distribution of one Monte Carlo run.
// Produced fresh per call, stateless, and discarded after consumption by the
// expected-value layer.
type SimulationResult struct {
	HomeWinProbability float64   `json:"home_win_probability"`
	AwayWinProbability float64   `json:"away_win_probability"`
	AverageHomeScore   float64   `json:"average_home_score"`
	AverageAwayScore   float64   `json:"average_away_score"`
	AverageMargin      float64   `json:"average_margin"`
	Margins            []float64 `json:"margins"`
	Iterations         int       `json:"iterations"`
}

// SpreadCoverProbability returns the fraction of simulated games in which the
// home side covered the given spread (negative spread means home favored).
func (r *SimulationResult) SpreadCoverProbability(spread float64) float64 {
	if len(r.Margins) == 0 {
		return 0
	}
	covered := 0
	for _, m := range r.Margins {
		if m+spread > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(r.Margins))
}

// MarginPercentile returns the p-th percentile (0..1) of the margin distribution.
func (r *SimulationResult) MarginPercentile(p float64) float64 {
	if len(r.Margins) == 0 {
		return 0
	}
	sorted := make([]float64, len(r.Margins))
	copy(sorted, r.Margins)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
