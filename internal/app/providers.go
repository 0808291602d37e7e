package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pluginsync/internal/app/reconcile"
	"pluginsync/internal/domain"
	"pluginsync/internal/infra/catalog/loader"
	"pluginsync/internal/infra/host"
	"pluginsync/internal/infra/store"
	"pluginsync/internal/infra/telemetry"
	"pluginsync/internal/infra/updatesite"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewHealthTracker() *telemetry.HealthTracker {
	return telemetry.NewHealthTracker()
}

func NewLoader(logger *zap.Logger) *loader.Loader {
	return loader.NewLoader(logger)
}

func NewStore(cfg Config) (*store.Store, func(), error) {
	path := cfg.StatePath
	if path == "" {
		path = store.ResolveDefaultPath()
	}
	st, err := store.OpenStore(path)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

func NewFetcher(cfg Config, logger *zap.Logger) *updatesite.Fetcher {
	return updatesite.NewFetcher(cfg.FetchTimeout, logger)
}

func NewLocalHost(cfg Config, st *store.Store, fetcher *updatesite.Fetcher, logger *zap.Logger) (*host.LocalHost, error) {
	localHost, err := host.NewLocalHost(st, fetcher, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Restarter != nil {
		localHost.SetRestarter(cfg.Restarter)
	}
	return localHost, nil
}

func NewDriver(hostState domain.HostState, metrics domain.Metrics, logger *zap.Logger) *reconcile.Driver {
	return reconcile.NewDriver(hostState, metrics, logger)
}
