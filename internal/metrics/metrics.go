// Package metrics provides the centralized Prometheus registry for the model core.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "games_processed_total",
		Help:      "Total games processed by the update pipeline, by outcome",
	}, []string{"outcome"})
	FeedbackTriggersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "feedback_triggers_total",
		Help:      "Total VAE feedback passes triggered by predictor error",
	})
	FetchRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "fetch_retries_total",
		Help:      "Total retries across game fetch attempts",
	})
	DegradationAlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "degradation_alerts_total",
		Help:      "Total degradation alerts raised by the monitor, by severity",
	}, []string{"severity"})
)

// Gauge metrics
var (
	TrainingNNLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "training_nn_loss",
		Help:      "Most recent transition predictor loss",
	})
	TrainingVAELoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "training_vae_loss",
		Help:      "Most recent encoder total loss",
	})
	FeedbackAlpha = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "feedback_alpha",
		Help:      "Current feedback coupling coefficient",
	})
	TrackedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "tracked_teams",
		Help:      "Number of teams with latent state in memory",
	})
	TeamUncertainty = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "team_mean_uncertainty",
		Help:      "Mean latent sigma per team",
	}, []string{"team_id"})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo simulation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	GameUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "game_update_duration_seconds",
		Help:      "End-to-end duration of one post-game update in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(GamesProcessedTotal)
		registry.MustRegister(FeedbackTriggersTotal)
		registry.MustRegister(FetchRetriesTotal)
		registry.MustRegister(DegradationAlertsTotal)

		registry.MustRegister(TrainingNNLoss)
		registry.MustRegister(TrainingVAELoss)
		registry.MustRegister(FeedbackAlpha)
		registry.MustRegister(TrackedTeams)
		registry.MustRegister(TeamUncertainty)

		registry.MustRegister(SimulationDuration)
		registry.MustRegister(GameUpdateDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordGameProcessed records one pipeline result by outcome.
func RecordGameProcessed(outcome string, durationSeconds float64) {
	GamesProcessedTotal.WithLabelValues(outcome).Inc()
	GameUpdateDuration.Observe(durationSeconds)
}

// RecordFeedbackTrigger records one VAE feedback pass.
func RecordFeedbackTrigger() {
	FeedbackTriggersTotal.Inc()
}

// RecordFetchRetry records one fetch retry.
func RecordFetchRetry() {
	FetchRetriesTotal.Inc()
}

// RecordDegradationAlert records a monitor alert by severity.
func RecordDegradationAlert(severity string) {
	DegradationAlertsTotal.WithLabelValues(severity).Inc()
}

// UpdateTrainingLosses updates the loss gauges.
func UpdateTrainingLosses(nnLoss, vaeLoss float64) {
	TrainingNNLoss.Set(nnLoss)
	TrainingVAELoss.Set(vaeLoss)
}

// UpdateAlpha updates the feedback coefficient gauge.
func UpdateAlpha(alpha float64) {
	FeedbackAlpha.Set(alpha)
}

// UpdateTeamUncertainty updates the per-team sigma gauge.
func UpdateTeamUncertainty(teamID string, sigma float64) {
	TeamUncertainty.WithLabelValues(teamID).Set(sigma)
}

// UpdateTrackedTeams updates the in-memory team count gauge.
func UpdateTrackedTeams(count int) {
	TrackedTeams.Set(float64(count))
}

// RecordSimulation records one simulation run's duration.
func RecordSimulation(durationSeconds float64) {
	SimulationDuration.Observe(durationSeconds)
}
