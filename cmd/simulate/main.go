package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/ev"
	applogger "github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
	"github.com/yourusername/courtside/internal/odds"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/simulator"
)

var (
	configFile string
	homeTeam   string
	awayTeam   string
	iterations int
	neutral    bool
	postseason bool
	conference bool
	spread     float64
	homeOdds   float64
	awayOdds   float64
	bankroll   float64
	liveOdds   bool

	logger      *logrus.Logger
	cfg         *config.Config
	db          *database.DB
	store       *bayes.Store
	source      datasource.GameSource
	weightsRepo repository.ModelWeightsRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&homeTeam, "home", "", "Home team ID (required)")
	rootCmd.Flags().StringVar(&awayTeam, "away", "", "Away team ID (required)")
	rootCmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Simulation iterations (default from config)")
	rootCmd.Flags().BoolVar(&neutral, "neutral", false, "Neutral site game")
	rootCmd.Flags().BoolVar(&postseason, "postseason", false, "Postseason game")
	rootCmd.Flags().BoolVar(&conference, "conference", false, "Conference game")
	rootCmd.Flags().Float64Var(&spread, "spread", 0, "Point spread for cover probability (home perspective)")
	rootCmd.Flags().Float64Var(&homeOdds, "home-odds", 0, "Decimal odds for the home moneyline")
	rootCmd.Flags().Float64Var(&awayOdds, "away-odds", 0, "Decimal odds for the away moneyline")
	rootCmd.Flags().Float64Var(&bankroll, "bankroll", 0, "Bankroll for Kelly stake sizing")
	rootCmd.Flags().BoolVar(&liveOdds, "live-odds", false, "Pull moneyline quotes from the configured odds feed")

	rootCmd.MarkFlagRequired("home")
	rootCmd.MarkFlagRequired("away")
}

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a matchup from current team latent state",
	Long: `Predicts per-possession outcome probabilities for both sides of a
matchup from each team's current latent distribution, runs a Monte Carlo
game simulation, and optionally compares the result against market odds.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return fmt.Errorf("failed to setup: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger = applogger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	teamRepo := repository.NewPostgresTeamStateRepository(db)
	weightsRepo = repository.NewPostgresModelWeightsRepository(db)
	bayesCfg := bayes.DefaultConfig(cfg.Model.LatentDim)
	bayesCfg.InitialUncertainty = cfg.Model.InitialUncertainty
	bayesCfg.MinUncertainty = cfg.Model.MinUncertainty
	bayesCfg.UncertaintyDecayRate = cfg.Model.UncertaintyDecayRate
	store = bayes.NewStore(bayesCfg, teamRepo, logger)

	source = datasource.NewProviderClient(&cfg.Provider, logger)

	return nil
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	homeDist, err := store.GetDistribution(ctx, homeTeam)
	if err != nil {
		return err
	}
	awayDist, err := store.GetDistribution(ctx, awayTeam)
	if err != nil {
		return err
	}

	gameCtx := models.GameContext{
		NeutralSite:    neutral,
		Postseason:     postseason,
		ConferenceGame: conference,
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	predictor := neural.NewPredictor(neural.DefaultPredictorConfig(cfg.Model.LatentDim), rng)
	if weights, err := weightsRepo.Load(ctx); err == nil {
		if err := predictor.SetWeights(weights.Predictor); err != nil {
			return fmt.Errorf("persisted predictor weights do not match the configured topology: %w", err)
		}
	} else if errors.Is(err, models.ErrNotFound) {
		logger.Warn("No trained model weights persisted yet; predicting with an untrained network")
	} else {
		return err
	}

	homeProbs, err := predictor.Predict(homeDist.Mu, homeDist.Sigma, awayDist.Mu, awayDist.Sigma, gameCtx)
	if err != nil {
		return err
	}
	awayProbs, err := predictor.Predict(awayDist.Mu, awayDist.Sigma, homeDist.Mu, homeDist.Sigma, gameCtx)
	if err != nil {
		return err
	}

	matchup := simulator.Matchup{
		HomeProbs:       homeProbs,
		AwayProbs:       awayProbs,
		HomePossessions: estimatePossessions(ctx, homeTeam),
		AwayPossessions: estimatePossessions(ctx, awayTeam),
	}

	n := iterations
	if n == 0 {
		n = cfg.Simulation.Iterations
	}

	sim := simulator.New(simulator.Config{Seed: cfg.Simulation.Seed}, logger)
	simStart := time.Now()
	result, err := sim.Simulate(matchup, n)
	if err != nil {
		return err
	}
	applogger.NewModelLogger(logger).LogSimulation(homeTeam, awayTeam, result.Iterations,
		result.HomeWinProbability, float64(time.Since(simStart).Milliseconds()))

	fmt.Printf("\n%s vs %s (%d iterations)\n\n", homeTeam, awayTeam, result.Iterations)
	fmt.Printf("  Home win probability: %.3f\n", result.HomeWinProbability)
	fmt.Printf("  Away win probability: %.3f\n", result.AwayWinProbability)
	fmt.Printf("  Average score:        %.1f - %.1f\n", result.AverageHomeScore, result.AverageAwayScore)
	fmt.Printf("  Average margin:       %+.1f\n", result.AverageMargin)
	if spread != 0 {
		fmt.Printf("  Cover probability (%+.1f): %.3f\n", spread, result.SpreadCoverProbability(spread))
	}

	if liveOdds {
		if err := loadLiveOdds(ctx); err != nil {
			logger.WithError(err).Warn("Live odds unavailable, falling back to flag-supplied quotes")
		}
	}
	if homeOdds > 0 && awayOdds > 0 {
		printEdges(result)
	}

	return nil
}

// loadLiveOdds subscribes to the odds feed for this matchup and waits for a
// moneyline quote on both sides, overwriting the flag-supplied odds.
func loadLiveOdds(ctx context.Context) error {
	if !cfg.OddsFeed.Enabled {
		return fmt.Errorf("odds feed is disabled in configuration")
	}

	book := odds.NewPriceBook()
	stream := odds.NewStreamClient(&cfg.OddsFeed, logger)
	stream.AddHandler(book.Handler())

	if err := stream.Connect(ctx); err != nil {
		return err
	}
	defer stream.Close()

	gameID := fmt.Sprintf("%s-%s", homeTeam, awayTeam)
	if err := stream.Subscribe([]string{gameID}); err != nil {
		return err
	}

	deadline := time.After(15 * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("timed out waiting for quotes on %s", gameID)
		case <-ticker.C:
			home, okHome := book.Latest(gameID, ev.SelectionHome)
			away, okAway := book.Latest(gameID, ev.SelectionAway)
			if okHome && okAway {
				homeOdds, _ = home.DecimalOdds.Float64()
				awayOdds, _ = away.DecimalOdds.Float64()
				return nil
			}
		}
	}
}

// estimatePossessions derives a possession budget from the team's current
// box-score stats, falling back to the league-typical pace when stats are
// unavailable.
func estimatePossessions(ctx context.Context, teamID string) int {
	stats, _, err := source.FetchTeamStats(ctx, teamID)
	if err != nil {
		if !errors.Is(err, models.ErrGameNotFound) {
			logger.WithError(err).WithField("team_id", teamID).Warn("Falling back to default possession count")
		}
		return simulator.BoxScoreEstimator{}.Estimate(nil)
	}
	return simulator.BoxScoreEstimator{}.Estimate(stats)
}

func printEdges(result *models.SimulationResult) {
	analyzer := ev.NewAnalyzer(cfg.Betting, logger)
	gameID := fmt.Sprintf("%s-%s", homeTeam, awayTeam)
	edges := analyzer.FindEdges(result,
		ev.MarketPrice{GameID: gameID, Selection: ev.SelectionHome, DecimalOdds: decimal.NewFromFloat(homeOdds)},
		ev.MarketPrice{GameID: gameID, Selection: ev.SelectionAway, DecimalOdds: decimal.NewFromFloat(awayOdds)},
		decimal.NewFromFloat(bankroll),
	)

	if len(edges) == 0 {
		fmt.Println("\n  No edges at or above the configured minimum.")
		return
	}

	fmt.Println("\n  Edges:")
	for _, e := range edges {
		fmt.Printf("    %-5s @ %s  model=%s implied=%s ev=%s",
			e.Selection, e.DecimalOdds.StringFixed(2),
			e.ModelProbability.StringFixed(3), e.ImpliedProbability.StringFixed(3), e.EV.StringFixed(3))
		if e.KellyStake.IsPositive() {
			fmt.Printf(" stake=%s", e.KellyStake.StringFixed(2))
		}
		fmt.Println()
	}
}
