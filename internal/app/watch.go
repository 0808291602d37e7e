package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pluginsync/internal/app/reconcile"
	"pluginsync/internal/infra/hashutil"
	"pluginsync/internal/infra/telemetry"
)

const defaultReloadDebounce = 200 * time.Millisecond

// RunObserver receives the outcome of every run started by Watch.
type RunObserver func(result reconcile.RunResult, err error)

// Watch applies the configuration once and again after every change to the
// file, serving /metrics and /healthz until ctx is done.
func (a *Application) Watch(ctx context.Context, observe RunObserver) error {
	configPath, err := filepath.Abs(a.cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer watcher.Close()
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("config watcher add %s: %w", filepath.Dir(configPath), err)
	}

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- telemetry.StartHTTPServer(serverCtx, telemetry.HTTPServerOptions{
			Addr:          a.cfg.MetricsAddr,
			EnableMetrics: true,
			EnableHealthz: true,
			Health:        a.health,
			Registry:      a.registry,
		}, a.logger)
	}()

	var lastApplied string
	run := func(force bool) {
		runCtx, meta := telemetry.EnsureRunMeta(ctx)
		desired, err := a.LoadDesired(runCtx)
		if err != nil {
			a.recordLoadFailure(meta, err)
			if observe != nil {
				observe(reconcile.RunResult{RunID: meta.RunID}, err)
			}
			return
		}
		fingerprint := hashutil.DesiredStateFingerprint(a.logger, desired)
		if !force && fingerprint != "" && fingerprint == lastApplied {
			a.logger.Debug("configuration unchanged; skipping run", zap.String("config", configPath))
			return
		}
		result, err := a.apply(runCtx, desired)
		if err == nil {
			lastApplied = fingerprint
		}
		if observe != nil {
			observe(result, err)
		}
	}
	run(true)

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serverErr:
			if err != nil {
				return err
			}
			serverErr = nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("config watcher closed")
			}
			a.logger.Warn("config watcher error", zap.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("config watcher closed")
			}
			if !shouldReloadForEvent(event, configPath) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(defaultReloadDebounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(defaultReloadDebounce)
		case <-timerChan(timer):
			timer = nil
			a.logger.Info("configuration changed; reconciling", zap.String("config", configPath))
			run(false)
		}
	}
}

func shouldReloadForEvent(event fsnotify.Event, configPath string) bool {
	if filepath.Clean(event.Name) != configPath {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
