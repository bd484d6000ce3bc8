// Package ev compares simulated win probabilities against market prices to
// surface positive-expected-value betting edges.
package ev

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

// Selections for a two-way moneyline market.
const (
	SelectionHome = "home"
	SelectionAway = "away"
)

// MarketPrice is one bookmaker quote for a selection, in decimal odds.
type MarketPrice struct {
	GameID      string          `json:"game_id"`
	Selection   string          `json:"selection"`
	Bookmaker   string          `json:"bookmaker"`
	DecimalOdds decimal.Decimal `json:"decimal_odds"`
}

// Edge is a selection whose simulated probability beats the vig-adjusted
// market-implied probability.
type Edge struct {
	GameID             string          `json:"game_id"`
	Selection          string          `json:"selection"`
	Bookmaker          string          `json:"bookmaker"`
	DecimalOdds        decimal.Decimal `json:"decimal_odds"`
	ModelProbability   decimal.Decimal `json:"model_probability"`
	ImpliedProbability decimal.Decimal `json:"implied_probability"`
	EV                 decimal.Decimal `json:"ev"`
	KellyStake         decimal.Decimal `json:"kelly_stake"`
}

// ImpliedProbability converts decimal odds into the bookmaker's implied
// probability (1/odds), vig included.
func ImpliedProbability(odds decimal.Decimal) decimal.Decimal {
	if odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Div(odds)
}

// RemoveVig rescales a market's implied probabilities so they sum to 1,
// stripping the bookmaker's overround.
func RemoveVig(implied []decimal.Decimal) []decimal.Decimal {
	total := decimal.Zero
	for _, p := range implied {
		total = total.Add(p)
	}
	if total.IsZero() {
		return implied
	}
	fair := make([]decimal.Decimal, len(implied))
	for i, p := range implied {
		fair[i] = p.Div(total)
	}
	return fair
}

// Analyzer converts simulation results and market quotes into ranked edges.
type Analyzer struct {
	minEdge       decimal.Decimal
	kellyFraction decimal.Decimal
	maxStake      decimal.Decimal
	logger        *logrus.Logger
}

// NewAnalyzer creates an analyzer from betting configuration.
func NewAnalyzer(cfg config.BettingConfig, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		minEdge:       decimal.NewFromFloat(cfg.MinEdge),
		kellyFraction: decimal.NewFromFloat(cfg.KellyFraction),
		maxStake:      decimal.NewFromFloat(cfg.MaxStake),
		logger:        logger,
	}
}

// FindEdges evaluates a two-way moneyline market against the simulation
// result and returns edges at or above the minimum, best first. bankroll
// sizes the fractional-Kelly stakes; pass zero to skip staking.
func (a *Analyzer) FindEdges(result *models.SimulationResult, homePrice, awayPrice MarketPrice, bankroll decimal.Decimal) []Edge {
	implied := RemoveVig([]decimal.Decimal{
		ImpliedProbability(homePrice.DecimalOdds),
		ImpliedProbability(awayPrice.DecimalOdds),
	})

	candidates := []struct {
		price    MarketPrice
		modelled decimal.Decimal
		implied  decimal.Decimal
	}{
		{homePrice, decimal.NewFromFloat(result.HomeWinProbability), implied[0]},
		{awayPrice, decimal.NewFromFloat(result.AwayWinProbability), implied[1]},
	}

	var edges []Edge
	for _, c := range candidates {
		edge := c.modelled.Sub(c.implied)
		if edge.LessThan(a.minEdge) {
			continue
		}

		e := Edge{
			GameID:             c.price.GameID,
			Selection:          c.price.Selection,
			Bookmaker:          c.price.Bookmaker,
			DecimalOdds:        c.price.DecimalOdds,
			ModelProbability:   c.modelled,
			ImpliedProbability: c.implied,
			EV:                 edge,
		}
		if bankroll.IsPositive() {
			e.KellyStake = a.kellyStake(c.modelled, c.price.DecimalOdds, bankroll)
		}
		edges = append(edges, e)

		a.logger.WithFields(logrus.Fields{
			"game_id":   e.GameID,
			"selection": e.Selection,
			"odds":      e.DecimalOdds.String(),
			"ev":        e.EV.String(),
		}).Info("Betting edge identified")
	}

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].EV.GreaterThan(edges[j].EV)
	})

	return edges
}

// kellyStake sizes a bet with the fractional Kelly criterion:
// f = (b·p − q) / b, scaled by the configured fraction and capped at maxStake.
func (a *Analyzer) kellyStake(p, odds, bankroll decimal.Decimal) decimal.Decimal {
	b := odds.Sub(decimal.NewFromInt(1))
	if !b.IsPositive() {
		return decimal.Zero
	}
	q := decimal.NewFromInt(1).Sub(p)
	f := p.Mul(b).Sub(q).Div(b)
	if !f.IsPositive() {
		return decimal.Zero
	}

	stake := bankroll.Mul(f).Mul(a.kellyFraction)
	if a.maxStake.IsPositive() && stake.GreaterThan(a.maxStake) {
		stake = a.maxStake
	}
	return stake.Round(2)
}
