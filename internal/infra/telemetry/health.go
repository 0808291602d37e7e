package telemetry

import (
	"sync"
	"time"
)

// HealthReport is the /healthz payload.
type HealthReport struct {
	Status    string    `json:"status"`
	LastRunID string    `json:"lastRunId,omitempty"`
	LastRunAt time.Time `json:"lastRunAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Runs      int       `json:"runs"`
}

// HealthTracker keeps the outcome of the most recent reconciliation run.
type HealthTracker struct {
	mu     sync.RWMutex
	report HealthReport
	now    func() time.Time
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		report: HealthReport{Status: "ok"},
		now:    time.Now,
	}
}

// RecordRun stores the outcome of a run; a failed run marks the tracker degraded.
func (h *HealthTracker) RecordRun(runID string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Runs++
	h.report.LastRunID = runID
	h.report.LastRunAt = h.now()
	if err != nil {
		h.report.Status = "degraded"
		h.report.LastError = err.Error()
		return
	}
	h.report.Status = "ok"
	h.report.LastError = ""
}

func (h *HealthTracker) Report() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}
