// Package pipeline sequences the post-game model update for one completed
// game: fetch, validate, predict fresh, score the prediction, decide whether
// the expensive update is warranted, apply it, and persist the outcome. The
// whole sequence runs inside a bounded retry loop with exponential backoff
// and a per-game timeout.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
	"github.com/yourusername/courtside/internal/repository"
)

// baselineIncreaseFactor marks a material error increase versus the supplied
// pre-game baseline.
const baselineIncreaseFactor = 1.25

// Config parameterizes the orchestrator's retry and decision behavior.
type Config struct {
	MaxUpdateAttempts    int
	BackoffBase          time.Duration
	BackoffMax           time.Duration
	GameTimeout          time.Duration
	FeedbackThreshold    float64
	AbsoluteErrorCeiling float64
	ModelCacheTTL        time.Duration
}

// ModelLoader assembles the encoder/predictor/trainer bundle, typically by
// restoring persisted weights and training state.
type ModelLoader func(ctx context.Context) (*Model, error)

// Orchestrator drives the post-game update state machine. Games are processed
// strictly sequentially; the Bayesian learning-rate schedule requires each
// team's updates to arrive in chronological order.
type Orchestrator struct {
	cfg          Config
	source       datasource.GameSource
	builder      *features.Builder
	store        *bayes.Store
	loadModel    ModelLoader
	cache        *ModelCache
	trainingRepo repository.TrainingStateRepository
	weightsRepo  repository.ModelWeightsRepository
	perfRepo     repository.PerformanceRepository
	processed    repository.ProcessedGameRepository
	logger       *logrus.Logger
	modelLogger  *logger.ModelLogger
}

// New creates an orchestrator. The repositories may be nil for in-memory use
// in tests.
func New(
	cfg Config,
	source datasource.GameSource,
	builder *features.Builder,
	store *bayes.Store,
	loadModel ModelLoader,
	trainingRepo repository.TrainingStateRepository,
	weightsRepo repository.ModelWeightsRepository,
	perfRepo repository.PerformanceRepository,
	processed repository.ProcessedGameRepository,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		source:       source,
		builder:      builder,
		store:        store,
		loadModel:    loadModel,
		cache:        NewModelCache(cfg.ModelCacheTTL),
		trainingRepo: trainingRepo,
		weightsRepo:  weightsRepo,
		perfRepo:     perfRepo,
		processed:    processed,
		logger:       log,
		modelLogger:  logger.NewModelLogger(log),
	}
}

// ProcessGame runs the full update sequence for one game. baselineError is
// the caller's pre-game prediction error, or 0 when none exists. The returned
// result always carries an outcome; the error is non-nil only for the failed
// outcome.
func (o *Orchestrator) ProcessGame(ctx context.Context, gameID string, baselineError float64) (*models.GameResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.GameTimeout)
	defer cancel()

	start := time.Now()
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= o.cfg.MaxUpdateAttempts; attempt++ {
		attempts = attempt

		result, err := o.runOnce(ctx, gameID, baselineError)
		if err == nil {
			result.Attempts = attempt
			o.finalize(ctx, result, start)
			return result, nil
		}
		lastErr = err

		if !errors.Is(err, models.ErrTransientFetch) || attempt == o.cfg.MaxUpdateAttempts {
			break
		}

		metrics.RecordFetchRetry()
		delay := BackoffDelay(attempt, o.cfg.BackoffBase, o.cfg.BackoffMax)
		o.logger.WithFields(logrus.Fields{
			"game_id": gameID,
			"attempt": attempt,
			"delay":   delay,
		}).Warn("Transient failure processing game, retrying")

		select {
		case <-ctx.Done():
			lastErr = fmt.Errorf("game %s timed out: %w", gameID, ctx.Err())
		case <-time.After(delay):
			continue
		}
		break
	}

	o.modelLogger.LogPredictionError(gameID, lastErr.Error())
	result := &models.GameResult{
		GameID:   gameID,
		Outcome:  models.OutcomeFailed,
		Attempts: attempts,
		Err:      lastErr.Error(),
	}
	o.finalize(ctx, result, start)
	return result, lastErr
}

// ProcessGames handles a batch strictly sequentially, isolating per-game
// failures so one bad game never blocks the rest.
func (o *Orchestrator) ProcessGames(ctx context.Context, gameIDs []string) []*models.GameResult {
	results := make([]*models.GameResult, 0, len(gameIDs))
	for _, id := range gameIDs {
		if o.processed != nil {
			done, err := o.processed.IsProcessed(ctx, id)
			if err == nil && done {
				o.logger.WithField("game_id", id).Debug("Game already processed, skipping")
				continue
			}
		}
		result, err := o.ProcessGame(ctx, id, 0)
		if err != nil {
			o.logger.WithFields(logrus.Fields{
				"game_id": id,
				"error":   err,
			}).Error("Game processing failed after all attempts")
		}
		results = append(results, result)
	}
	return results
}

// runOnce executes one pass through the state machine. A nil error with a
// skipped outcome means the game was legitimately not actionable; a returned
// error wrapping models.ErrTransientFetch is retryable.
func (o *Orchestrator) runOnce(ctx context.Context, gameID string, baselineError float64) (*models.GameResult, error) {
	// FETCH
	game, err := o.source.FetchCompletedGame(ctx, gameID)
	if errors.Is(err, models.ErrGameNotFinished) {
		return o.skipResult(gameID), nil
	}
	if err != nil {
		return nil, err
	}

	// VALIDATE_COMPLETE
	if !game.IsComplete() {
		o.logger.WithField("game_id", gameID).Info("Game payload incomplete, skipping")
		return o.skipResult(gameID), nil
	}

	homeFeatures, err := o.builder.Build(game.HomeStats, game.HomeGamesPlayed)
	if errors.Is(err, models.ErrInsufficientHistory) {
		return o.skipResult(gameID), nil
	}
	if err != nil {
		return nil, err
	}
	awayFeatures, err := o.builder.Build(game.AwayStats, game.AwayGamesPlayed)
	if errors.Is(err, models.ErrInsufficientHistory) {
		return o.skipResult(gameID), nil
	}
	if err != nil {
		return nil, err
	}

	model, err := o.model(ctx)
	if err != nil {
		return nil, err
	}

	// PREDICT_FRESH
	homeDist, err := o.store.GetDistribution(ctx, game.HomeTeamID)
	if err != nil {
		return nil, err
	}
	awayDist, err := o.store.GetDistribution(ctx, game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	predHome, err := model.Predictor.Predict(homeDist.Mu, homeDist.Sigma, awayDist.Mu, awayDist.Sigma, game.Context)
	if err != nil {
		return nil, err
	}
	predAway, err := model.Predictor.Predict(awayDist.Mu, awayDist.Sigma, homeDist.Mu, homeDist.Sigma, game.Context)
	if err != nil {
		return nil, err
	}

	// COMPUTE_ERROR
	actualHome, err := ObservedProbs(game.Plays, game.HomeTeamID)
	if err != nil {
		return nil, err
	}
	actualAway, err := ObservedProbs(game.Plays, game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	homeErr := model.Predictor.Loss(predHome, actualHome)
	awayErr := model.Predictor.Loss(predAway, actualAway)
	totalErr := homeErr + awayErr

	result := &models.GameResult{
		GameID:    gameID,
		HomeError: homeErr,
		AwayError: awayErr,
	}

	// DECIDE
	if !o.shouldUpdate(totalErr, homeErr, awayErr, baselineError) {
		result.Outcome = models.OutcomeSkipped
		result.NNLoss = totalErr / 2
		result.Alpha = model.Trainer.Alpha()
		o.logger.WithFields(logrus.Fields{
			"game_id":   gameID,
			"total_err": totalErr,
			"threshold": o.cfg.FeedbackThreshold,
		}).Info("Prediction error within tolerance, skipping update")
		return result, nil
	}

	// UPDATE
	homeStep, err := model.Trainer.Step(homeDist.Mu, homeDist.Sigma, awayDist.Mu, awayDist.Sigma, game.Context, homeFeatures, actualHome)
	if err != nil {
		return nil, err
	}
	awayStep, err := model.Trainer.Step(awayDist.Mu, awayDist.Sigma, homeDist.Mu, homeDist.Sigma, game.Context, awayFeatures, actualAway)
	if err != nil {
		return nil, err
	}

	homeMu, _, err := model.Encoder.Encode(homeFeatures)
	if err != nil {
		return nil, err
	}
	awayMu, _, err := model.Encoder.Encode(awayFeatures)
	if err != nil {
		return nil, err
	}

	updatedHome, err := o.store.Update(ctx, game.HomeTeamID, homeMu, game.Context)
	if err != nil {
		return nil, err
	}
	updatedAway, err := o.store.Update(ctx, game.AwayTeamID, awayMu, game.Context)
	if err != nil {
		return nil, err
	}
	metrics.UpdateTeamUncertainty(game.HomeTeamID, updatedHome.MeanUncertainty())
	metrics.UpdateTeamUncertainty(game.AwayTeamID, updatedAway.MeanUncertainty())

	// PERSIST
	if o.weightsRepo != nil {
		weights := &neural.ModelWeights{
			Encoder:   model.Encoder.Weights(),
			Predictor: model.Predictor.Weights(),
		}
		if err := o.weightsRepo.Save(ctx, weights); err != nil {
			return nil, fmt.Errorf("%w: failed to persist model weights: %v", models.ErrTransientFetch, err)
		}
	}
	if o.trainingRepo != nil {
		state := model.Trainer.State()
		if err := o.trainingRepo.Save(ctx, &state); err != nil {
			return nil, fmt.Errorf("%w: failed to persist training state: %v", models.ErrTransientFetch, err)
		}
	}
	o.cache.Invalidate()

	result.Outcome = models.OutcomeUpdated
	result.NNLoss = (homeStep.NNLoss + awayStep.NNLoss) / 2
	result.VAELoss = (homeStep.VAELoss + awayStep.VAELoss) / 2
	result.FeedbackTriggered = homeStep.FeedbackTriggered || awayStep.FeedbackTriggered
	result.Alpha = model.Trainer.Alpha()

	o.modelLogger.LogTrainingStep(gameID, result.NNLoss, result.VAELoss, model.Trainer.Alpha(), homeStep.FeedbackTriggered || awayStep.FeedbackTriggered)

	return result, nil
}

// shouldUpdate applies the DECIDE rules: total error above the feedback
// threshold, either side above the absolute ceiling, or a material increase
// versus the pre-game baseline.
func (o *Orchestrator) shouldUpdate(totalErr, homeErr, awayErr, baselineError float64) bool {
	if totalErr > o.cfg.FeedbackThreshold {
		return true
	}
	if homeErr > o.cfg.AbsoluteErrorCeiling || awayErr > o.cfg.AbsoluteErrorCeiling {
		return true
	}
	if baselineError > 0 && totalErr > baselineError*baselineIncreaseFactor {
		return true
	}
	return false
}

// model returns the cached model bundle, loading it on miss.
func (o *Orchestrator) model(ctx context.Context) (*Model, error) {
	if m, ok := o.cache.Get(); ok {
		return m, nil
	}
	m, err := o.loadModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	o.cache.Put(m)
	return m, nil
}

func (o *Orchestrator) skipResult(gameID string) *models.GameResult {
	return &models.GameResult{
		GameID:  gameID,
		Outcome: models.OutcomeSkipped,
	}
}

// finalize appends the performance record, marks the game processed and
// records metrics. Bookkeeping failures are logged, never escalated.
func (o *Orchestrator) finalize(ctx context.Context, result *models.GameResult, start time.Time) {
	duration := time.Since(start)

	if o.perfRepo != nil {
		record := &models.PerformanceRecord{
			ID:                uuid.New(),
			GameID:            result.GameID,
			Outcome:           result.Outcome,
			NNLoss:            result.NNLoss,
			VAELoss:           result.VAELoss,
			FeedbackTriggered: result.FeedbackTriggered,
			Alpha:             result.Alpha,
			Attempts:          result.Attempts,
			RecordedAt:        time.Now(),
		}
		if err := o.perfRepo.Append(ctx, record); err != nil {
			o.logger.WithFields(logrus.Fields{
				"game_id": result.GameID,
				"error":   err,
			}).Error("Failed to append performance record")
		}
	}

	if o.processed != nil {
		if err := o.processed.MarkProcessed(ctx, result.GameID, result.Outcome); err != nil {
			o.logger.WithFields(logrus.Fields{
				"game_id": result.GameID,
				"error":   err,
			}).Error("Failed to mark game processed")
		}
	}

	metrics.RecordGameProcessed(string(result.Outcome), duration.Seconds())
	o.modelLogger.LogGameUpdate(result.GameID, string(result.Outcome), result.Attempts, float64(duration.Milliseconds()))
}
