package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldRunID      = "run_id"
	FieldSource     = "source"
	FieldPlugin     = "plugin"
	FieldStage      = "stage"
	FieldDurationMs = "duration_ms"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventRunStart        = "run_start"
	EventRunSuccess      = "run_success"
	EventRunFailure      = "run_failure"
	EventPluginMissing   = "plugin_missing"
	EventPluginOutdated  = "plugin_outdated"
	EventPluginCurrent   = "plugin_current"
	EventPluginNewer     = "plugin_newer"
	EventSourceRefreshed = "source_refreshed"
	EventSourceStale     = "source_stale"
	EventRestart         = "restart"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func RunIDField(value string) zap.Field {
	return zap.String(FieldRunID, value)
}

func SourceField(id string) zap.Field {
	return zap.String(FieldSource, id)
}

func PluginField(id string) zap.Field {
	return zap.String(FieldPlugin, id)
}

func StageField(stage string) zap.Field {
	return zap.String(FieldStage, stage)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
