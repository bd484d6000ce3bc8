package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for model operations.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogTrainingStep logs a single feedback-training step.
func (ml *ModelLogger) LogTrainingStep(gameID string, nnLoss float64, vaeLoss float64, alpha float64, feedbackTriggered bool) {
	ml.WithFields(logrus.Fields{
		"game_id":            gameID,
		"nn_loss":            nnLoss,
		"vae_loss":           vaeLoss,
		"alpha":              alpha,
		"feedback_triggered": feedbackTriggered,
	}).Info("Training step completed")
}

// LogGameUpdate logs the outcome of a post-game pipeline run.
func (ml *ModelLogger) LogGameUpdate(gameID string, outcome string, attempts int, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"game_id":     gameID,
		"outcome":     outcome,
		"attempts":    attempts,
		"duration_ms": durationMs,
	}).Info("Post-game update completed")
}

// LogTeamStateUpdate logs a Bayesian team-state posterior update.
func (ml *ModelLogger) LogTeamStateUpdate(teamID string, gamesProcessed int, meanUncertainty float64, learningRate float64) {
	ml.WithFields(logrus.Fields{
		"team_id":          teamID,
		"games_processed":  gamesProcessed,
		"mean_uncertainty": meanUncertainty,
		"learning_rate":    learningRate,
	}).Debug("Team state updated")
}

// LogSimulation logs a Monte Carlo simulation run.
func (ml *ModelLogger) LogSimulation(homeTeam string, awayTeam string, iterations int, homeWinProb float64, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"home_team":     homeTeam,
		"away_team":     awayTeam,
		"iterations":    iterations,
		"home_win_prob": homeWinProb,
		"duration_ms":   durationMs,
	}).Info("Simulation completed")
}

// LogDegradationAlert logs a performance degradation alert.
func (ml *ModelLogger) LogDegradationAlert(severity string, metric string, recent float64, baseline float64) {
	ml.WithFields(logrus.Fields{
		"severity": severity,
		"metric":   metric,
		"recent":   recent,
		"baseline": baseline,
	}).Warn("Model performance degradation detected")
}

// LogPredictionError logs a prediction failure.
func (ml *ModelLogger) LogPredictionError(gameID string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"game_id":      gameID,
		"error_reason": errorReason,
	}).Error("Prediction failed")
}
