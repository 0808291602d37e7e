package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pluginsync/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.runs)
	assert.NotNil(t, m.runDuration)
	assert.NotNil(t, m.planActions)
	assert.NotNil(t, m.sourceRefresh)
	assert.NotNil(t, m.restarts)
	assert.NotNil(t, m.lastPlanLength)
}

func TestNewPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveRun(domain.RunResultSuccess, 250*time.Millisecond)
	m.ObservePlan(domain.ActionPlan{Actions: []domain.Action{
		{ID: "git", Reason: domain.ActionReasonMissing},
		{ID: "workflow-aggregator", Reason: domain.ActionReasonOutdated},
	}})
	m.ObserveSourceRefresh("default", domain.RefreshResultSuccess)
	m.RecordRestart()

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.GetName())
	}

	assert.Contains(t, names, "pluginsync_runs_total")
	assert.Contains(t, names, "pluginsync_run_duration_seconds")
	assert.Contains(t, names, "pluginsync_plan_actions_total")
	assert.Contains(t, names, "pluginsync_source_refresh_total")
	assert.Contains(t, names, "pluginsync_restarts_total")
	assert.Contains(t, names, "pluginsync_last_plan_actions")
}

func TestPrometheusMetrics_Values(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	m.ObserveRun(domain.RunResultFailure, time.Second)
	m.ObserveRun(domain.RunResultFailure, time.Second)
	m.ObserveSourceRefresh("mirror", domain.RefreshResultUnreachable)
	m.ObservePlan(domain.ActionPlan{Actions: []domain.Action{{ID: "git", Reason: domain.ActionReasonMissing}}})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.runs.WithLabelValues(string(domain.RunResultFailure))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sourceRefresh.WithLabelValues("mirror", string(domain.RefreshResultUnreachable))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.planActions.WithLabelValues(string(domain.ActionReasonMissing))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.lastPlanLength))
}

func TestPrometheusMetrics_ImplementsInterface(t *testing.T) {
	var _ domain.Metrics = (*PrometheusMetrics)(nil)
	var _ domain.Metrics = (*NoopMetrics)(nil)
}
