package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/health"
	applogger "github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/monitor"
	"github.com/yourusername/courtside/internal/neural"
	"github.com/yourusername/courtside/internal/pipeline"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/scheduler"
	"github.com/yourusername/courtside/internal/trainer"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	gameID     string
	sweepDate  string
	daemon     bool

	logger       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
	orchestrator *pipeline.Orchestrator
	source       datasource.GameSource
	mon          *monitor.Monitor
	perfRepo     repository.PerformanceRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&gameID, "game", "g", "", "Process a single game by ID")
	rootCmd.Flags().StringVarP(&sweepDate, "date", "d", "", "Process all completed games on a date (YYYY-MM-DD)")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "Run as a daemon with scheduled sweeps")
}

var rootCmd = &cobra.Command{
	Use:   "postgame",
	Short: "Process completed games through the model update pipeline",
	Long: `Fetches completed games, scores the model's fresh predictions against
observed possession outcomes, and updates the networks and team latent
state when the prediction error warrants it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return fmt.Errorf("failed to setup: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()

		if daemon {
			return runDaemon()
		}

		ctx := context.Background()
		switch {
		case gameID != "":
			result, err := orchestrator.ProcessGame(ctx, gameID, 0)
			printResult(result)
			if err != nil {
				return err
			}
			return nil
		case sweepDate != "":
			date, err := time.Parse("2006-01-02", sweepDate)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", sweepDate, err)
			}
			ids, err := source.FetchGamesByDate(ctx, date)
			if err != nil {
				return fmt.Errorf("failed to list games: %w", err)
			}
			for _, result := range orchestrator.ProcessGames(ctx, ids) {
				printResult(result)
			}
			return nil
		default:
			return fmt.Errorf("one of --game, --date or --daemon is required")
		}
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

	if region, secret := os.Getenv("COURTSIDE_AWS_REGION"), os.Getenv("COURTSIDE_SECRETS_NAME"); region != "" && secret != "" {
		if err := config.LoadSecretsFromAWS(cfg, region, secret); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger = applogger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	teamRepo := repository.NewPostgresTeamStateRepository(db)
	trainingRepo := repository.NewPostgresTrainingStateRepository(db)
	weightsRepo := repository.NewPostgresModelWeightsRepository(db)
	perfRepo = repository.NewPostgresPerformanceRepository(db)
	processedRepo := repository.NewPostgresProcessedGameRepository(db)

	bayesCfg := bayes.DefaultConfig(cfg.Model.LatentDim)
	bayesCfg.InitialUncertainty = cfg.Model.InitialUncertainty
	bayesCfg.MinUncertainty = cfg.Model.MinUncertainty
	bayesCfg.UncertaintyDecayRate = cfg.Model.UncertaintyDecayRate
	store := bayes.NewStore(bayesCfg, teamRepo, logger)
	if err := store.WarmUp(ctx); err != nil {
		return err
	}

	builder := features.NewBuilder(features.SchemaV1(), cfg.Model.MinGames, logger)
	source = datasource.NewProviderClient(&cfg.Provider, logger)

	loadModel := func(ctx context.Context) (*pipeline.Model, error) {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		encoder := neural.NewEncoder(neural.DefaultEncoderConfig(cfg.Model.InputDim, cfg.Model.LatentDim), rng)
		predictor := neural.NewPredictor(neural.DefaultPredictorConfig(cfg.Model.LatentDim), rng)
		tr := trainer.New(encoder, predictor, trainerConfig(cfg), logger)

		// Restore the trained layer parameters; without them every reload
		// would predict from a fresh random initialization.
		weights, err := weightsRepo.Load(ctx)
		if err == nil {
			if err := encoder.SetWeights(weights.Encoder); err != nil {
				return nil, fmt.Errorf("persisted encoder weights do not match the configured topology: %w", err)
			}
			if err := predictor.SetWeights(weights.Predictor); err != nil {
				return nil, fmt.Errorf("persisted predictor weights do not match the configured topology: %w", err)
			}
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}

		state, err := trainingRepo.Load(ctx)
		if err == nil {
			tr.Restore(state)
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}

		return &pipeline.Model{Encoder: encoder, Predictor: predictor, Trainer: tr}, nil
	}

	orchestrator = pipeline.New(
		pipeline.Config{
			MaxUpdateAttempts:    cfg.Pipeline.MaxUpdateAttempts,
			BackoffBase:          cfg.Pipeline.BackoffBase(),
			BackoffMax:           cfg.Pipeline.BackoffMax(),
			GameTimeout:          cfg.Pipeline.GameTimeout(),
			FeedbackThreshold:    cfg.Model.FeedbackThreshold,
			AbsoluteErrorCeiling: cfg.Pipeline.AbsoluteErrorCeiling,
			ModelCacheTTL:        time.Duration(cfg.Pipeline.ModelCacheTTLSeconds) * time.Second,
		},
		source, builder, store, loadModel,
		trainingRepo, weightsRepo, perfRepo, processedRepo,
		logger,
	)

	monCfg := monitor.DefaultConfig()
	monCfg.HistorySize = cfg.Monitor.HistorySize
	monCfg.DegradationThreshold = cfg.Monitor.DegradationThreshold
	monCfg.FeedbackRateCeiling = cfg.Monitor.FeedbackRateCeiling
	monCfg.Cooldown = time.Duration(cfg.Monitor.CooldownMinutes) * time.Minute
	monCfg.ConvergenceThreshold = cfg.Model.ConvergenceThreshold
	mon = monitor.New(monCfg, store, logger)

	return nil
}

func trainerConfig(cfg *config.Config) trainer.Config {
	return trainer.Config{
		LearningRate:         cfg.Model.LearningRate,
		FeedbackThreshold:    cfg.Model.FeedbackThreshold,
		InitialAlpha:         cfg.Model.InitialAlpha,
		AlphaDecayRate:       cfg.Model.AlphaDecayRate,
		MinAlpha:             cfg.Model.MinAlpha,
		StabilityWindow:      cfg.Model.StabilityWindow,
		ConvergenceThreshold: cfg.Model.ConvergenceThreshold,
	}
}

func runDaemon() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Logger:      logger,
	})
	healthServer.AddCheck("database", db.Ping)
	if err := healthServer.Start(ctx); err != nil {
		return err
	}
	healthServer.SetReady(true)

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.WithError(err).Error("Metrics server error")
			}
		}()
	}

	sched := scheduler.NewScheduler(orchestrator, source, mon, logger)

	sweep := cfg.Schedule.PostGameSweep
	if sweep == "" {
		sweep = "0 6 * * *"
	}
	if err := sched.SchedulePostGameSweep(sweep); err != nil {
		return err
	}

	snapshot := cfg.Schedule.StateSnapshot
	if snapshot == "" {
		snapshot = "0 8 * * *"
	}
	if err := sched.ScheduleStateSnapshot(snapshot); err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}

	logger.WithField("next_run", sched.GetNextRun()).Info("Post-game daemon running")
	<-ctx.Done()

	logger.Info("Shutting down")
	return sched.Stop()
}

func printResult(result *models.GameResult) {
	fmt.Printf("game=%s outcome=%s attempts=%d nn_loss=%.4f vae_loss=%.4f",
		result.GameID, result.Outcome, result.Attempts, result.NNLoss, result.VAELoss)
	if result.Err != "" {
		fmt.Printf(" error=%q", result.Err)
	}
	fmt.Println()
}
