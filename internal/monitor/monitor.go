// Package monitor passively observes training and update outcomes, tracks
// rolling accuracy, and raises rate-limited degradation alerts.
package monitor

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
)

// Alert severities, ordered by magnitude of the accuracy drop.
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Trend categories for the rolling accuracy series.
const (
	TrendStronglyImproving = "strongly_improving"
	TrendImproving         = "improving"
	TrendStable            = "stable"
	TrendDeclining         = "declining"
	TrendStronglyDeclining = "strongly_declining"
)

// Config parameterizes the monitor's windows and alert thresholds.
type Config struct {
	HistorySize          int
	DegradationThreshold float64
	FeedbackRateCeiling  float64
	Cooldown             time.Duration
	// Sigma level below which a team's latent estimate counts as converged.
	ConvergenceThreshold float64
}

// DefaultConfig returns the standard monitor settings.
func DefaultConfig() Config {
	return Config{
		HistorySize:          200,
		DegradationThreshold: 0.1,
		FeedbackRateCeiling:  0.8,
		Cooldown:             30 * time.Minute,
		ConvergenceThreshold: 0.1,
	}
}

// Alert is a degradation signal, not an error.
type Alert struct {
	Severity string    `json:"severity"`
	Metric   string    `json:"metric"`
	Recent   float64   `json:"recent"`
	Baseline float64   `json:"baseline"`
	RaisedAt time.Time `json:"raised_at"`
}

// TeamConvergence reports one tracked team's uncertainty status.
type TeamConvergence struct {
	TeamID          string  `json:"team_id"`
	GamesProcessed  int     `json:"games_processed"`
	MeanUncertainty float64 `json:"mean_uncertainty"`
	Converged       bool    `json:"converged"`
}

// Report is the monitor's full status snapshot.
type Report struct {
	RecordCount    int               `json:"record_count"`
	RecentAccuracy float64           `json:"recent_accuracy"`
	RecentVAELoss  float64           `json:"recent_vae_loss"`
	FeedbackRate   float64           `json:"feedback_rate"`
	Trend          string            `json:"trend"`
	Teams          []TeamConvergence `json:"teams"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Monitor keeps a bounded rolling history of performance records. Safe for
// concurrent use.
type Monitor struct {
	cfg         Config
	store       *bayes.Store
	logger      *logrus.Logger
	modelLogger *logger.ModelLogger

	mu        sync.Mutex
	history   []*models.PerformanceRecord
	lastAlert time.Time
}

// New creates a monitor. store may be nil when no team report is needed.
func New(cfg Config, store *bayes.Store, log *logrus.Logger) *Monitor {
	return &Monitor{
		cfg:         cfg,
		store:       store,
		logger:      log,
		modelLogger: logger.NewModelLogger(log),
	}
}

// Record appends one outcome to the rolling history and returns any alerts
// the new sample triggered. Alerts are rate-limited by the cooldown window.
func (m *Monitor) Record(record *models.PerformanceRecord) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, record)
	if len(m.history) > m.cfg.HistorySize {
		m.history = m.history[len(m.history)-m.cfg.HistorySize:]
	}

	var alerts []Alert
	if a := m.checkAccuracyDrop(); a != nil {
		alerts = append(alerts, *a)
	}
	if a := m.checkFeedbackRate(); a != nil {
		alerts = append(alerts, *a)
	}

	for _, a := range alerts {
		m.lastAlert = a.RaisedAt
		metrics.RecordDegradationAlert(a.Severity)
		m.modelLogger.LogDegradationAlert(a.Severity, a.Metric, a.Recent, a.Baseline)
	}

	return alerts
}

// RecentAccuracy returns the mean accuracy proxy over the newest window records.
func (m *Monitor) RecentAccuracy(window int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	recent, _ := m.windows(window)
	return meanAccuracy(recent)
}

// RecentVAELoss returns the mean VAE loss over the newest window records.
func (m *Monitor) RecentVAELoss(window int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	recent, _ := m.windows(window)
	total := 0.0
	for _, r := range recent {
		total += r.VAELoss
	}
	if len(recent) == 0 {
		return 0
	}
	return total / float64(len(recent))
}

// FeedbackRate returns the fraction of recorded steps that fired feedback.
func (m *Monitor) FeedbackRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feedbackRate()
}

// Trend categorizes the accuracy direction by comparing the recent half of
// the history against the prior half.
func (m *Monitor) Trend() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trend()
}

// Report assembles the full status snapshot, including per-team latent
// convergence when a store is attached.
func (m *Monitor) Report() *Report {
	m.mu.Lock()
	window := m.cfg.HistorySize / 2
	recent, _ := m.windows(window)
	report := &Report{
		RecordCount:    len(m.history),
		RecentAccuracy: meanAccuracy(recent),
		FeedbackRate:   m.feedbackRate(),
		Trend:          m.trend(),
		GeneratedAt:    time.Now(),
	}
	total := 0.0
	for _, r := range recent {
		total += r.VAELoss
	}
	if len(recent) > 0 {
		report.RecentVAELoss = total / float64(len(recent))
	}
	m.mu.Unlock()

	if m.store != nil {
		for _, d := range m.store.TrackedTeams() {
			report.Teams = append(report.Teams, TeamConvergence{
				TeamID:          d.TeamID,
				GamesProcessed:  d.GamesProcessed,
				MeanUncertainty: d.MeanUncertainty(),
				Converged:       d.MeanUncertainty() < m.cfg.ConvergenceThreshold,
			})
		}
	}

	return report
}

// checkAccuracyDrop flags a recent-window accuracy drop versus the prior
// window, with severity scaled by the magnitude of the drop.
func (m *Monitor) checkAccuracyDrop() *Alert {
	if !m.cooldownElapsed() {
		return nil
	}

	window := m.cfg.HistorySize / 4
	if window < 2 {
		window = 2
	}
	recent, prior := m.windows(window)
	if len(recent) < window || len(prior) < window {
		return nil
	}

	recentAcc := meanAccuracy(recent)
	priorAcc := meanAccuracy(prior)
	drop := priorAcc - recentAcc
	if drop <= m.cfg.DegradationThreshold {
		return nil
	}

	severity := SeverityMedium
	switch {
	case drop > 3*m.cfg.DegradationThreshold:
		severity = SeverityCritical
	case drop > 2*m.cfg.DegradationThreshold:
		severity = SeverityHigh
	}

	return &Alert{
		Severity: severity,
		Metric:   "accuracy",
		Recent:   recentAcc,
		Baseline: priorAcc,
		RaisedAt: time.Now(),
	}
}

// checkFeedbackRate flags a feedback-trigger rate above the ceiling, which
// indicates the coupling term is dominating training.
func (m *Monitor) checkFeedbackRate() *Alert {
	if !m.cooldownElapsed() {
		return nil
	}

	if len(m.history) < 10 {
		return nil
	}
	rate := m.feedbackRate()
	if rate <= m.cfg.FeedbackRateCeiling {
		return nil
	}

	return &Alert{
		Severity: SeverityHigh,
		Metric:   "feedback_rate",
		Recent:   rate,
		Baseline: m.cfg.FeedbackRateCeiling,
		RaisedAt: time.Now(),
	}
}

func (m *Monitor) cooldownElapsed() bool {
	return m.lastAlert.IsZero() || time.Since(m.lastAlert) >= m.cfg.Cooldown
}

// windows splits the tail of the history into the newest window records and
// the window records before them.
func (m *Monitor) windows(window int) (recent, prior []*models.PerformanceRecord) {
	n := len(m.history)
	if window <= 0 || n == 0 {
		return nil, nil
	}
	if window > n {
		window = n
	}
	recent = m.history[n-window:]
	if n >= 2*window {
		prior = m.history[n-2*window : n-window]
	} else if n > window {
		prior = m.history[:n-window]
	}
	return recent, prior
}

func (m *Monitor) feedbackRate() float64 {
	if len(m.history) == 0 {
		return 0
	}
	triggered := 0
	for _, r := range m.history {
		if r.FeedbackTriggered {
			triggered++
		}
	}
	return float64(triggered) / float64(len(m.history))
}

func (m *Monitor) trend() string {
	window := len(m.history) / 2
	recent, prior := m.windows(window)
	if len(recent) == 0 || len(prior) == 0 {
		return TrendStable
	}

	change := meanAccuracy(recent) - meanAccuracy(prior)
	threshold := m.cfg.DegradationThreshold / 2
	switch {
	case change > 2*threshold:
		return TrendStronglyImproving
	case change > threshold:
		return TrendImproving
	case change < -2*threshold:
		return TrendStronglyDeclining
	case change < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanAccuracy(records []*models.PerformanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range records {
		total += r.AccuracyProxy()
	}
	return total / float64(len(records))
}
