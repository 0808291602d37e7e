package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/telemetry"
)

// Prepared holds everything derived from the desired state before the host
// is touched.
type Prepared struct {
	Proxy        *domain.ProxyConfig
	Catalog      SourceCatalog
	Requirements RequirementSet
}

// SourceFailure records a site whose metadata could not be refreshed.
type SourceFailure struct {
	Source domain.Source
	Err    error
}

// RunResult describes one reconciliation run.
type RunResult struct {
	RunID           string
	Classified      []Classification
	Plan            domain.ActionPlan
	Sources         []domain.Source
	RefreshFailures []SourceFailure
	Restarted       bool
	Manager         domain.ComponentManager
}

// Driver applies a desired state to a host, one run at a time.
type Driver struct {
	mu       sync.Mutex
	host     domain.HostState
	observer *Observer
	logger   *zap.Logger
}

func NewDriver(host domain.HostState, metrics domain.Metrics, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("reconcile")
	return &Driver{
		host:     host,
		observer: NewObserver(metrics, logger),
		logger:   logger,
	}
}

// Prepare validates the desired state without touching the host.
func (d *Driver) Prepare(desired domain.DesiredState) (Prepared, error) {
	prepared, err := PrepareDesired(d.host.Sources(), desired)
	if err != nil {
		return Prepared{}, err
	}
	if dups := prepared.Requirements.DuplicateIDs(); len(dups) > 0 {
		d.logger.Debug("required plugins listed more than once; last entry wins", zap.Strings("plugins", dups))
	}
	return prepared, nil
}

// PrepareDesired merges the sources and builds the requirement set. The default
// site comes from hostSources when present.
func PrepareDesired(hostSources []domain.Source, desired domain.DesiredState) (Prepared, error) {
	if desired.Proxy != nil && desired.Proxy.Host == "" {
		return Prepared{}, domain.Malformed("prepare", "proxy.host is required when proxy is set")
	}
	catalog, err := MergeSources(DefaultSource(hostSources, desired.DefaultSourceURL), desired.Sources)
	if err != nil {
		return Prepared{}, err
	}
	build := BuildRequirements
	if desired.StrictDuplicates {
		build = BuildRequirementsStrict
	}
	requirements, err := build(desired.Required)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{
		Proxy:        desired.Proxy.Clone(),
		Catalog:      catalog,
		Requirements: requirements,
	}, nil
}

// Preview classifies the requirements against the host without mutating it.
func (d *Driver) Preview(ctx context.Context, desired domain.DesiredState) (RunResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, meta := telemetry.EnsureRunMeta(ctx)
	result := RunResult{RunID: meta.RunID}
	prepared, err := d.Prepare(desired)
	if err != nil {
		return result, WrapStage(StagePrepare, err)
	}
	result.Sources = prepared.Catalog.Sources()
	if err := d.classify(prepared, &result); err != nil {
		return result, WrapStage(StagePlan, err)
	}
	result.Manager = d.host.ComponentManager()
	return result, nil
}

// Run performs one reconciliation pass. Once the source list is replaced the
// run continues to completion even if ctx is canceled.
func (d *Driver) Run(ctx context.Context, desired domain.DesiredState) (RunResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	ctx, meta := telemetry.EnsureRunMeta(ctx)
	fields := telemetry.RunFields(meta)
	d.logger.Debug("plugin reconciliation started", withFields(fields, telemetry.EventField(telemetry.EventRunStart))...)

	result := RunResult{RunID: meta.RunID}
	err := d.run(ctx, desired, fields, &result)
	d.observer.ObserveRun(fields, result.Plan, err, time.Since(start))
	if err != nil {
		return result, err
	}
	return result, nil
}

func (d *Driver) run(ctx context.Context, desired domain.DesiredState, fields []zap.Field, result *RunResult) error {
	prepared, err := d.Prepare(desired)
	if err != nil {
		return WrapStage(StagePrepare, err)
	}
	result.Sources = prepared.Catalog.Sources()

	steps := make([]Step, 0, 6)
	if prepared.Proxy != nil {
		previous := d.host.Proxy().Clone()
		steps = append(steps, Step{
			Name: StageProxy,
			Apply: func(context.Context) error {
				return d.host.SetProxy(prepared.Proxy)
			},
			Rollback: func(context.Context) error {
				return d.host.SetProxy(previous)
			},
		})
	}
	steps = append(steps,
		Step{
			Name: StageSources,
			Apply: func(context.Context) error {
				if err := d.host.ReplaceSources(result.Sources); err != nil {
					return err
				}
				return d.host.Save()
			},
			Barrier: true,
		},
		Step{
			Name: StageRefresh,
			Apply: func(ctx context.Context) error {
				return d.refresh(ctx, fields, result)
			},
		},
		Step{
			Name: StagePlan,
			Apply: func(context.Context) error {
				if err := d.classify(prepared, result); err != nil {
					return err
				}
				d.observer.ObserveClassification(fields, result.Classified)
				d.observer.ObservePlan(result.Plan)
				return nil
			},
		},
		Step{
			Name: StageInstall,
			Apply: func(ctx context.Context) error {
				return d.install(ctx, result.Plan)
			},
		},
		Step{
			Name: StageRestart,
			Apply: func(context.Context) error {
				if !d.host.RestartRequired() {
					return nil
				}
				d.observer.ObserveRestart(fields)
				if err := d.host.Restart(); err != nil {
					return err
				}
				result.Restarted = true
				return nil
			},
		},
	)

	if err := NewTransaction(d.logger).Apply(ctx, steps); err != nil {
		return err
	}
	result.Manager = d.host.ComponentManager()
	return nil
}

func (d *Driver) refresh(ctx context.Context, fields []zap.Field, result *RunResult) error {
	for _, source := range result.Sources {
		err := d.host.RefreshSource(ctx, source)
		switch {
		case err == nil:
			d.observer.ObserveRefresh(fields, source, domain.RefreshResultSuccess, nil)
		case errors.Is(err, domain.ErrSourceUnreachable):
			d.observer.ObserveRefresh(fields, source, domain.RefreshResultUnreachable, err)
			result.RefreshFailures = append(result.RefreshFailures, SourceFailure{Source: source, Err: err})
		default:
			d.observer.ObserveRefresh(fields, source, domain.RefreshResultError, err)
			return fmt.Errorf("refresh %s: %w", source.ID, err)
		}
	}
	return nil
}

func (d *Driver) classify(prepared Prepared, result *RunResult) error {
	installed, err := d.host.InstalledComponents()
	if err != nil {
		return fmt.Errorf("read installed plugins: %w", err)
	}
	classified, err := Classify(prepared.Requirements, InstalledIndex(installed))
	if err != nil {
		return err
	}
	result.Classified = classified
	result.Plan = PlanFrom(classified)
	return nil
}

func (d *Driver) install(ctx context.Context, plan domain.ActionPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if err := d.host.Install(ctx, plan.IDs(), true); err != nil {
		if errors.Is(err, domain.ErrInstallFailure) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrInstallFailure, err)
	}
	return nil
}
