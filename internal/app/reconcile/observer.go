package reconcile

import (
	"time"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/telemetry"
)

type Observer struct {
	metrics domain.Metrics
	logger  *zap.Logger
}

func NewObserver(metrics domain.Metrics, logger *zap.Logger) *Observer {
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{metrics: metrics, logger: logger}
}

// withFields copies base before appending so callers sharing base never see
// each other's fields.
func withFields(base []zap.Field, extra ...zap.Field) []zap.Field {
	out := make([]zap.Field, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func (o *Observer) ObserveClassification(fields []zap.Field, classified []Classification) {
	for _, entry := range classified {
		entryFields := withFields(fields,
			telemetry.PluginField(entry.ID),
			zap.String("min_version", entry.MinVersion),
		)
		switch entry.Status {
		case StatusMissing:
			o.logger.Info("missing plugin; adding to install list", append(entryFields, telemetry.EventField(telemetry.EventPluginMissing))...)
		case StatusOutdated:
			o.logger.Info("installed plugin is older than required; installing newest",
				append(entryFields, zap.String("installed", entry.Installed), telemetry.EventField(telemetry.EventPluginOutdated))...)
		case StatusNewer:
			o.logger.Info("installed plugin is newer than required",
				append(entryFields, zap.String("installed", entry.Installed), telemetry.EventField(telemetry.EventPluginNewer))...)
		default:
			o.logger.Info("plugin is up to date",
				append(entryFields, zap.String("installed", entry.Installed), telemetry.EventField(telemetry.EventPluginCurrent))...)
		}
	}
}

func (o *Observer) ObservePlan(plan domain.ActionPlan) {
	o.metrics.ObservePlan(plan)
}

func (o *Observer) ObserveRefresh(fields []zap.Field, source domain.Source, result domain.RefreshResult, err error) {
	o.metrics.ObserveSourceRefresh(source.ID, result)
	fields = withFields(fields,
		telemetry.SourceField(source.ID),
		zap.String("url", telemetry.RedactURL(source.URL)),
	)
	switch result {
	case domain.RefreshResultSuccess:
		o.logger.Debug("update site refreshed", append(fields, telemetry.EventField(telemetry.EventSourceRefreshed))...)
	case domain.RefreshResultUnreachable:
		o.logger.Debug("unable to contact update site; using cached metadata",
			append(fields, telemetry.EventField(telemetry.EventSourceStale), zap.Error(err))...)
	default:
		o.logger.Warn("update site refresh failed", append(fields, zap.Error(err))...)
	}
}

func (o *Observer) ObserveRestart(fields []zap.Field) {
	o.metrics.RecordRestart()
	o.logger.Info("restart required to complete installation; restarting host",
		withFields(fields, telemetry.EventField(telemetry.EventRestart))...)
}

func (o *Observer) ObserveRun(fields []zap.Field, plan domain.ActionPlan, err error, duration time.Duration) {
	fields = withFields(fields, telemetry.DurationField(duration))
	if err != nil {
		o.metrics.ObserveRun(domain.RunResultFailure, duration)
		o.logger.Warn("plugin reconciliation failed",
			append(fields,
				telemetry.EventField(telemetry.EventRunFailure),
				telemetry.StageField(FailureStage(err)),
				zap.Error(err),
			)...)
		return
	}
	o.metrics.ObserveRun(domain.RunResultSuccess, duration)
	o.logger.Info("plugin reconciliation complete",
		append(fields,
			telemetry.EventField(telemetry.EventRunSuccess),
			zap.Int("missing", plan.Count(domain.ActionReasonMissing)),
			zap.Int("outdated", plan.Count(domain.ActionReasonOutdated)),
		)...)
}
