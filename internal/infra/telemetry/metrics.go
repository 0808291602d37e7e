package telemetry

import (
	"time"

	"pluginsync/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveRun(_ domain.RunResultLabel, _ time.Duration) {}

func (n *NoopMetrics) ObservePlan(_ domain.ActionPlan) {}

func (n *NoopMetrics) ObserveSourceRefresh(_ string, _ domain.RefreshResult) {}

func (n *NoopMetrics) RecordRestart() {}

var _ domain.Metrics = (*NoopMetrics)(nil)
