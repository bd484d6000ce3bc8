package monitor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/bayes"
	"github.com/yourusername/courtside/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// record builds a performance record with the NN loss that produces the given
// accuracy proxy (acc = 1 - loss/2).
func record(accuracy float64, feedback bool) *models.PerformanceRecord {
	return &models.PerformanceRecord{
		GameID:            "g",
		Outcome:           models.OutcomeUpdated,
		NNLoss:            2 * (1 - accuracy),
		FeedbackTriggered: feedback,
		RecordedAt:        time.Now(),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HistorySize = 8 // alert window = 2
	cfg.Cooldown = 0
	return cfg
}

func feed(m *Monitor, accuracy float64, n int) []Alert {
	var alerts []Alert
	for i := 0; i < n; i++ {
		alerts = m.Record(record(accuracy, false))
	}
	return alerts
}

func TestNoAlertOnStableAccuracy(t *testing.T) {
	m := New(testConfig(), nil, quietLogger())

	for i := 0; i < 8; i++ {
		alerts := m.Record(record(0.8, false))
		assert.Empty(t, alerts)
	}
}

func TestAccuracyDropSeverities(t *testing.T) {
	cases := []struct {
		name     string
		recent   float64
		severity string
	}{
		{"medium", 0.85, SeverityMedium},     // drop 0.15
		{"high", 0.75, SeverityHigh},         // drop 0.25
		{"critical", 0.55, SeverityCritical}, // drop 0.45
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(testConfig(), nil, quietLogger())
			feed(m, 1.0, 2)
			feed(m, tc.recent, 1)
			alerts := feed(m, tc.recent, 1)

			require.Len(t, alerts, 1)
			assert.Equal(t, "accuracy", alerts[0].Metric)
			assert.Equal(t, tc.severity, alerts[0].Severity)
			assert.InDelta(t, tc.recent, alerts[0].Recent, 1e-9)
			assert.InDelta(t, 1.0, alerts[0].Baseline, 1e-9)
		})
	}
}

func TestCooldownSuppressesRepeatAlerts(t *testing.T) {
	cfg := testConfig()
	cfg.Cooldown = time.Hour
	m := New(cfg, nil, quietLogger())

	feed(m, 1.0, 2)
	feed(m, 0.5, 1)
	alerts := feed(m, 0.5, 1)
	require.Len(t, alerts, 1, "first breach alerts")

	// Keep degrading inside the cooldown window: silence.
	for i := 0; i < 4; i++ {
		assert.Empty(t, m.Record(record(0.3, false)))
	}
}

func TestFeedbackRateAlert(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 20
	m := New(cfg, nil, quietLogger())

	// Constant accuracy so only the feedback-rate check can fire; the rate
	// check needs at least 10 records.
	var alerts []Alert
	for i := 0; i < 12; i++ {
		alerts = m.Record(record(0.8, true))
	}

	require.NotEmpty(t, alerts)
	assert.Equal(t, "feedback_rate", alerts[0].Metric)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.InDelta(t, 1.0, alerts[0].Recent, 1e-9)
}

func TestFeedbackRateBelowCeilingIsQuiet(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 20
	m := New(cfg, nil, quietLogger())

	for i := 0; i < 20; i++ {
		alerts := m.Record(record(0.8, i%2 == 0)) // rate 0.5 < 0.8
		assert.Empty(t, alerts)
	}
}

func TestTrendCategories(t *testing.T) {
	cases := []struct {
		name          string
		prior, recent float64
		trend         string
	}{
		{"strongly improving", 0.5, 0.8, TrendStronglyImproving},
		{"improving", 0.5, 0.58, TrendImproving},
		{"stable", 0.5, 0.52, TrendStable},
		{"declining", 0.5, 0.42, TrendDeclining},
		{"strongly declining", 0.8, 0.5, TrendStronglyDeclining},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Cooldown = time.Hour // alerts are irrelevant here
			m := New(cfg, nil, quietLogger())

			feed(m, tc.prior, 4)
			feed(m, tc.recent, 4)
			assert.Equal(t, tc.trend, m.Trend())
		})
	}
}

func TestTrendStableWithLittleHistory(t *testing.T) {
	m := New(testConfig(), nil, quietLogger())
	assert.Equal(t, TrendStable, m.Trend())
	m.Record(record(0.8, false))
	assert.Equal(t, TrendStable, m.Trend())
}

func TestHistoryBounded(t *testing.T) {
	m := New(testConfig(), nil, quietLogger())
	feed(m, 0.8, 30)
	assert.Equal(t, 8, m.Report().RecordCount)
}

func TestReportIncludesTeamConvergence(t *testing.T) {
	store := bayes.NewStore(bayes.DefaultConfig(4), nil, quietLogger())
	ctx := context.Background()

	_, err := store.GetDistribution(ctx, "duke")
	require.NoError(t, err)
	// Drive one team to a narrow posterior.
	for i := 0; i < 120; i++ {
		_, err := store.Update(ctx, "unc", []float64{0.1, 0.1, 0.1, 0.1}, models.GameContext{})
		require.NoError(t, err)
	}

	cfg := testConfig()
	cfg.ConvergenceThreshold = 0.1
	m := New(cfg, store, quietLogger())
	feed(m, 0.8, 4)

	report := m.Report()
	assert.Equal(t, 4, report.RecordCount)
	assert.InDelta(t, 0.8, report.RecentAccuracy, 1e-9)

	require.Len(t, report.Teams, 2)
	byTeam := make(map[string]TeamConvergence, 2)
	for _, tc := range report.Teams {
		byTeam[tc.TeamID] = tc
	}
	assert.False(t, byTeam["duke"].Converged, "fresh prior is far from converged")
	assert.True(t, byTeam["unc"].Converged, "sigma at the floor is converged")
	assert.Equal(t, 120, byTeam["unc"].GamesProcessed)
}
