package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIdempotent(t *testing.T) {
	assert.Same(t, InitRegistry(), InitRegistry())
}

func TestRecordGameProcessed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGameProcessed("updated", 1.5)
		RecordGameProcessed("skipped", 0.2)
		RecordGameProcessed("failed", 0.1)
	})
}

func TestRecordFeedbackTrigger(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(FeedbackTriggersTotal)
	RecordFeedbackTrigger()
	assert.Equal(t, before+1, testutil.ToFloat64(FeedbackTriggersTotal))
}

func TestRecordFetchRetry(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(FetchRetriesTotal)
	RecordFetchRetry()
	RecordFetchRetry()
	assert.Equal(t, before+2, testutil.ToFloat64(FetchRetriesTotal))
}

func TestUpdateGauges(t *testing.T) {
	InitRegistry()

	UpdateAlpha(0.123)
	assert.Equal(t, 0.123, testutil.ToFloat64(FeedbackAlpha))

	UpdateTrainingLosses(2.5, 7.5)
	assert.Equal(t, 2.5, testutil.ToFloat64(TrainingNNLoss))
	assert.Equal(t, 7.5, testutil.ToFloat64(TrainingVAELoss))

	UpdateTeamUncertainty("duke", 0.42)
	assert.Equal(t, 0.42, testutil.ToFloat64(TeamUncertainty.WithLabelValues("duke")))

	UpdateTrackedTeams(17)
	assert.Equal(t, 17.0, testutil.ToFloat64(TrackedTeams))
}

func TestRecordDegradationAlert(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordDegradationAlert("medium")
		RecordDegradationAlert("critical")
	})
}

func TestRecordSimulation(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSimulation(0.05)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	UpdateAlpha(0.3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "courtside_feedback_alpha"))
}
