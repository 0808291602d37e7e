package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pluginsync/internal/domain"
)

type PrometheusMetrics struct {
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	planActions    *prometheus.CounterVec
	sourceRefresh  *prometheus.CounterVec
	restarts       prometheus.Counter
	lastPlanLength prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginsync_runs_total",
				Help: "Total number of reconciliation runs",
			},
			[]string{"result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pluginsync_run_duration_seconds",
				Help:    "Duration of reconciliation runs in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		planActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginsync_plan_actions_total",
				Help: "Total number of planned plugin installs and upgrades",
			},
			[]string{"reason"},
		),
		sourceRefresh: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginsync_source_refresh_total",
				Help: "Total number of update site metadata refreshes",
			},
			[]string{"source", "result"},
		),
		restarts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pluginsync_restarts_total",
				Help: "Total number of host restarts triggered",
			},
		),
		lastPlanLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginsync_last_plan_actions",
				Help: "Number of actions in the most recent plan",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveRun(result domain.RunResultLabel, duration time.Duration) {
	p.runs.WithLabelValues(string(result)).Inc()
	p.runDuration.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObservePlan(plan domain.ActionPlan) {
	for _, action := range plan.Actions {
		p.planActions.WithLabelValues(string(action.Reason)).Inc()
	}
	p.lastPlanLength.Set(float64(len(plan.Actions)))
}

func (p *PrometheusMetrics) ObserveSourceRefresh(sourceID string, result domain.RefreshResult) {
	p.sourceRefresh.WithLabelValues(sourceID, string(result)).Inc()
}

func (p *PrometheusMetrics) RecordRestart() {
	p.restarts.Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
