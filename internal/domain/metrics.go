package domain

import "time"

// RunResultLabel labels the outcome of a reconciliation run.
type RunResultLabel string

const (
	RunResultSuccess RunResultLabel = "success"
	RunResultFailure RunResultLabel = "failure"
)

// RefreshResult labels the outcome of a site refresh.
type RefreshResult string

const (
	RefreshResultSuccess     RefreshResult = "success"
	RefreshResultUnreachable RefreshResult = "unreachable"
	RefreshResultError       RefreshResult = "error"
)

// Metrics records reconciliation telemetry.
type Metrics interface {
	ObserveRun(result RunResultLabel, duration time.Duration)
	ObservePlan(plan ActionPlan)
	ObserveSourceRefresh(sourceID string, result RefreshResult)
	RecordRestart()
}
