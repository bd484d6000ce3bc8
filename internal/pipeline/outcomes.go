package pipeline

import (
	"fmt"

	"github.com/yourusername/courtside/internal/models"
)

// Play event types as reported by the provider's play-by-play feed.
const (
	eventTwoMake    = "two_make"
	eventTwoMiss    = "two_miss"
	eventThreeMake  = "three_make"
	eventThreeMiss  = "three_miss"
	eventFTMake     = "ft_make"
	eventFTMiss     = "ft_miss"
	eventOffRebound = "off_rebound"
	eventTurnover   = "turnover"
)

var eventOutcomes = map[string]int{
	eventTwoMake:    models.OutcomeTwoMake,
	eventTwoMiss:    models.OutcomeTwoMiss,
	eventThreeMake:  models.OutcomeThreeMake,
	eventThreeMiss:  models.OutcomeThreeMiss,
	eventFTMake:     models.OutcomeFTMake,
	eventFTMiss:     models.OutcomeFTMiss,
	eventOffRebound: models.OutcomeOffRebound,
	eventTurnover:   models.OutcomeTurnover,
}

// ObservedProbs aggregates a team's play-by-play events into the empirical
// possession-outcome distribution the trainer learns toward. Unrecognized
// event types (substitutions, timeouts) are ignored.
func ObservedProbs(plays []models.Play, teamID string) (models.TransitionProbs, error) {
	var probs models.TransitionProbs
	counted := 0
	for _, play := range plays {
		if play.TeamID != teamID {
			continue
		}
		idx, ok := eventOutcomes[play.EventType]
		if !ok {
			continue
		}
		probs[idx]++
		counted++
	}

	if counted == 0 {
		return probs, fmt.Errorf("team %s: no possession events in play-by-play: %w", teamID, models.ErrAllZeroProbabilities)
	}

	probs.Normalize()
	return probs, nil
}
