package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pluginsync/internal/app/reconcile"
	"pluginsync/internal/domain"
	"pluginsync/internal/infra/catalog/loader"
	"pluginsync/internal/infra/host"
	"pluginsync/internal/infra/store"
	"pluginsync/internal/infra/telemetry"
)

// Application wires the reconciler to the local host and its configuration.
type Application struct {
	cfg      Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  domain.Metrics
	health   *telemetry.HealthTracker
	loader   *loader.Loader
	store    *store.Store
	host     *host.LocalHost
	driver   *reconcile.Driver
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Config   Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  domain.Metrics
	Health   *telemetry.HealthTracker
	Loader   *loader.Loader
	Store    *store.Store
	Host     *host.LocalHost
	Driver   *reconcile.Driver
}

// NewApplication constructs the application runtime.
func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	health := opts.Health
	if health == nil {
		health = telemetry.NewHealthTracker()
	}
	return &Application{
		cfg:      opts.Config,
		logger:   logger,
		registry: opts.Registry,
		metrics:  metrics,
		health:   health,
		loader:   opts.Loader,
		store:    opts.Store,
		host:     opts.Host,
		driver:   opts.Driver,
	}
}

// LoadDesired reads the configured desired-state file.
func (a *Application) LoadDesired(ctx context.Context) (domain.DesiredState, error) {
	desired, err := a.loader.Load(ctx, a.cfg.ConfigPath)
	if err != nil {
		return domain.DesiredState{}, reconcile.WrapStage(reconcile.StagePrepare, err)
	}
	return desired, nil
}

// Apply runs one reconciliation pass against the configuration file.
func (a *Application) Apply(ctx context.Context) (reconcile.RunResult, error) {
	ctx, meta := telemetry.EnsureRunMeta(ctx)
	desired, err := a.LoadDesired(ctx)
	if err != nil {
		a.recordLoadFailure(meta, err)
		return reconcile.RunResult{RunID: meta.RunID}, err
	}
	return a.apply(ctx, desired)
}

func (a *Application) apply(ctx context.Context, desired domain.DesiredState) (reconcile.RunResult, error) {
	result, err := a.driver.Run(ctx, desired)
	a.health.RecordRun(result.RunID, err)
	return result, err
}

func (a *Application) recordLoadFailure(meta telemetry.RunMeta, err error) {
	a.logger.Warn("configuration load failed",
		telemetry.RunIDField(meta.RunID),
		zap.String("config", a.cfg.ConfigPath),
		zap.Error(err),
	)
	a.metrics.ObserveRun(domain.RunResultFailure, 0)
	a.health.RecordRun(meta.RunID, err)
}

// Plan reports what Apply would install without changing the host.
func (a *Application) Plan(ctx context.Context) (reconcile.RunResult, error) {
	desired, err := a.LoadDesired(ctx)
	if err != nil {
		return reconcile.RunResult{}, err
	}
	return a.driver.Preview(ctx, desired)
}

// Installed lists installed components and upgrades staged for restart.
func (a *Application) Installed() ([]domain.InstalledComponent, []domain.InstalledComponent, error) {
	installed, err := a.store.Installed()
	if err != nil {
		return nil, nil, err
	}
	pending, err := a.store.Pending()
	if err != nil {
		return nil, nil, err
	}
	return installed, pending, nil
}

// Sources returns the host's persisted update sites.
func (a *Application) Sources() []domain.Source {
	return a.host.Sources()
}

func (a *Application) Registry() *prometheus.Registry {
	return a.registry
}

func (a *Application) Health() *telemetry.HealthTracker {
	return a.health
}

// ValidateConfig loads the configuration at path and checks that it would
// prepare cleanly. The host state is not opened.
func ValidateConfig(ctx context.Context, path string, logger *zap.Logger) (reconcile.Prepared, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	desired, err := loader.NewLoader(logger).Load(ctx, path)
	if err != nil {
		return reconcile.Prepared{}, err
	}
	prepared, err := reconcile.PrepareDesired(nil, desired)
	if err != nil {
		return reconcile.Prepared{}, err
	}
	logger.Info("configuration validated",
		zap.String("config", path),
		zap.Int("update_sites", prepared.Catalog.Len()),
		zap.Int("required", prepared.Requirements.Len()),
		telemetry.DurationField(time.Since(start)),
	)
	return prepared, nil
}
