package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	applogger "github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/monitor"
	"github.com/yourusername/courtside/internal/repository"
)

var (
	configFile string
	days       int

	logger       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
	store        *bayes.Store
	trainingRepo repository.TrainingStateRepository
	perfRepo     repository.PerformanceRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&days, "days", 0, "Replay performance records from the last N days instead of the monitor's history size")
}

var rootCmd = &cobra.Command{
	Use:   "model-status",
	Short: "Check model training and convergence status",
	Long:  `Displays the trainer's state, recent performance trend, and per-team latent convergence.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return fmt.Errorf("failed to setup: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		return displayStatus()
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

	logger = applogger.NewLogger("warn")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	teamRepo := repository.NewPostgresTeamStateRepository(db)
	trainingRepo = repository.NewPostgresTrainingStateRepository(db)
	perfRepo = repository.NewPostgresPerformanceRepository(db)

	bayesCfg := bayes.DefaultConfig(cfg.Model.LatentDim)
	bayesCfg.InitialUncertainty = cfg.Model.InitialUncertainty
	bayesCfg.MinUncertainty = cfg.Model.MinUncertainty
	bayesCfg.UncertaintyDecayRate = cfg.Model.UncertaintyDecayRate
	store = bayes.NewStore(bayesCfg, teamRepo, logger)

	return nil
}

func displayStatus() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\n=== Courtside Model Status ===")

	fmt.Println("\nTraining State:")
	state, err := trainingRepo.Load(ctx)
	switch {
	case errors.Is(err, models.ErrNotFound):
		fmt.Println("  No training state persisted yet.")
	case err != nil:
		return err
	default:
		fmt.Printf("  Iteration:         %d\n", state.Iteration)
		fmt.Printf("  Alpha:             %.5f\n", state.Alpha)
		fmt.Printf("  Feedback triggers: %d\n", state.FeedbackTriggers)
		fmt.Printf("  Converged:         %v\n", state.Converged)
		fmt.Printf("  Updated:           %s\n", state.UpdatedAt.Format(time.RFC3339))
	}

	if err := store.WarmUp(ctx); err != nil {
		return err
	}

	monCfg := monitor.DefaultConfig()
	monCfg.HistorySize = cfg.Monitor.HistorySize
	monCfg.DegradationThreshold = cfg.Monitor.DegradationThreshold
	monCfg.FeedbackRateCeiling = cfg.Monitor.FeedbackRateCeiling
	monCfg.ConvergenceThreshold = cfg.Model.ConvergenceThreshold
	mon := monitor.New(monCfg, store, logger)

	if days > 0 {
		end := time.Now()
		records, err := perfRepo.GetByDateRange(ctx, end.AddDate(0, 0, -days), end)
		if err != nil {
			return err
		}
		// GetByDateRange returns oldest first, already in replay order.
		for _, record := range records {
			mon.Record(record)
		}
	} else {
		records, err := perfRepo.GetRecent(ctx, cfg.Monitor.HistorySize)
		if err != nil {
			return err
		}
		// GetRecent returns newest first; replay oldest first.
		for i := len(records) - 1; i >= 0; i-- {
			mon.Record(records[i])
		}
	}

	report := mon.Report()

	fmt.Println("\nPerformance:")
	fmt.Printf("  Records:          %d\n", report.RecordCount)
	fmt.Printf("  Recent accuracy:  %.3f\n", report.RecentAccuracy)
	fmt.Printf("  Recent VAE loss:  %.4f\n", report.RecentVAELoss)
	fmt.Printf("  Feedback rate:    %.3f\n", report.FeedbackRate)
	fmt.Printf("  Trend:            %s\n", report.Trend)

	fmt.Println("\nTeam Convergence:")
	if len(report.Teams) == 0 {
		fmt.Println("  No teams tracked yet.")
	}
	converged := 0
	for _, t := range report.Teams {
		status := "estimating"
		if t.Converged {
			status = "converged"
			converged++
		}
		fmt.Printf("  %-20s games=%-4d sigma=%.4f %s\n", t.TeamID, t.GamesProcessed, t.MeanUncertainty, status)
	}
	if len(report.Teams) > 0 {
		fmt.Printf("\n  %d/%d teams converged\n", converged, len(report.Teams))
	}

	fmt.Println()
	return nil
}
