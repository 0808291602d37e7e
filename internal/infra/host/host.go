package host

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/store"
	"pluginsync/internal/infra/telemetry"
	"pluginsync/internal/infra/updatesite"
)

// Restarter is invoked after pending components have been promoted.
type Restarter func(promoted []domain.InstalledComponent) error

// LocalHost is a HostState backed by a local state database. Proxy and source
// changes stay in memory until Save.
type LocalHost struct {
	mu        sync.Mutex
	store     *store.Store
	fetcher   *updatesite.Fetcher
	logger    *zap.Logger
	proxy     *domain.ProxyConfig
	sources   []domain.Source
	restarter Restarter
	now       func() time.Time
}

func NewLocalHost(st *store.Store, fetcher *updatesite.Fetcher, logger *zap.Logger) (*LocalHost, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetcher == nil {
		fetcher = updatesite.NewFetcher(updatesite.DefaultTimeout, logger)
	}
	cfg, err := st.Config()
	if err != nil {
		return nil, fmt.Errorf("load host config: %w", err)
	}
	return &LocalHost{
		store:   st,
		fetcher: fetcher,
		logger:  logger.Named("host"),
		proxy:   cfg.Proxy,
		sources: cfg.Sources,
		now:     time.Now,
	}, nil
}

// SetRestarter installs the hook run by Restart.
func (h *LocalHost) SetRestarter(restarter Restarter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restarter = restarter
}

func (h *LocalHost) Proxy() *domain.ProxyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proxy.Clone()
}

func (h *LocalHost) SetProxy(proxy *domain.ProxyConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proxy = proxy.Clone()
	return nil
}

func (h *LocalHost) Sources() []domain.Source {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Source(nil), h.sources...)
}

func (h *LocalHost) ReplaceSources(sources []domain.Source) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sources = append([]domain.Source(nil), sources...)
	return nil
}

// Save persists the proxy and source list.
func (h *LocalHost) Save() error {
	h.mu.Lock()
	cfg := store.HostConfig{Proxy: h.proxy.Clone(), Sources: append([]domain.Source(nil), h.sources...)}
	h.mu.Unlock()
	return h.store.SaveConfig(cfg)
}

// RefreshSource fetches the site catalog, reusing the cached ETag.
func (h *LocalHost) RefreshSource(ctx context.Context, source domain.Source) error {
	target, err := updatesite.MetadataURL(source.URL)
	if err != nil {
		return err
	}
	cached, found, err := h.store.SiteMetadata(source.ID)
	if err != nil {
		return err
	}
	etag := ""
	if found && cached.URL == target {
		etag = cached.ETag
	}

	result, err := h.fetcher.Fetch(ctx, source, h.Proxy(), etag)
	if err != nil {
		return err
	}
	if result.NotModified {
		return h.store.TouchSiteMetadata(source.ID, h.now())
	}
	return h.store.PutSiteMetadata(source.ID, store.SiteMetadata{
		URL:       result.URL,
		ETag:      result.ETag,
		FetchedAt: h.now(),
		Catalog:   result.Catalog,
	})
}

func (h *LocalHost) InstalledComponents() ([]domain.InstalledComponent, error) {
	return h.store.Installed()
}

// Install resolves every id to the newest version any cached site offers.
// Components not yet installed are loaded immediately; upgrades are staged
// until the next restart.
func (h *LocalHost) Install(ctx context.Context, ids []string, resolveDependencies bool) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	catalogs, err := h.catalogs()
	if err != nil {
		return err
	}
	installed, err := h.versions(h.store.Installed)
	if err != nil {
		return err
	}
	pending, err := h.versions(h.store.Pending)
	if err != nil {
		return err
	}

	targets, unknown := resolveTargets(ids, catalogs, installed, pending, resolveDependencies)
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.E(domain.CodeFailedPrecond, "install",
			fmt.Sprintf("no update site offers: %s", strings.Join(unknown, ", ")), domain.ErrInstallFailure)
	}

	var live, staged []domain.InstalledComponent
	for _, target := range targets {
		component := domain.InstalledComponent{ID: target.id, Version: target.version.String()}
		current, ok := installed[target.id]
		switch {
		case !ok:
			live = append(live, component)
		case target.version.IsNewerThan(current):
			staged = append(staged, component)
		default:
			h.logger.Warn("requested plugin has no newer version on any update site",
				telemetry.PluginField(target.id),
				zap.String("installed", current.String()),
				zap.String("available", component.Version),
			)
		}
	}
	if err := h.store.RecordInstall(live, staged); err != nil {
		return err
	}
	for _, component := range live {
		h.logger.Info("plugin installed", telemetry.PluginField(component.ID), zap.String("version", component.Version))
	}
	for _, component := range staged {
		h.logger.Info("plugin upgrade staged; restart required",
			telemetry.PluginField(component.ID),
			zap.String("version", component.Version),
		)
	}
	return nil
}

// RestartRequired reports the persisted restart flag. An unreadable flag counts
// as set so Restart runs and surfaces the store error.
func (h *LocalHost) RestartRequired() bool {
	required, err := h.store.RestartRequired()
	if err != nil {
		h.logger.Warn("read restart flag failed; assuming restart required", zap.Error(err))
		return true
	}
	return required
}

// Restart completes staged upgrades and runs the restart hook.
func (h *LocalHost) Restart() error {
	promoted, err := h.store.PromotePending()
	if err != nil {
		return err
	}
	h.mu.Lock()
	restarter := h.restarter
	h.mu.Unlock()
	if restarter != nil {
		if err := restarter(promoted); err != nil {
			return fmt.Errorf("restart hook: %w", err)
		}
	}
	h.logger.Info("host restarted", zap.Int("promoted", len(promoted)))
	return nil
}

func (h *LocalHost) ComponentManager() domain.ComponentManager {
	return &componentManager{store: h.store, logger: h.logger}
}

func (h *LocalHost) catalogs() ([]updatesite.Catalog, error) {
	sources := h.Sources()
	catalogs := make([]updatesite.Catalog, 0, len(sources))
	for _, source := range sources {
		meta, found, err := h.store.SiteMetadata(source.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			h.logger.Debug("no cached metadata for update site", telemetry.SourceField(source.ID))
			continue
		}
		catalogs = append(catalogs, meta.Catalog)
	}
	return catalogs, nil
}

func (h *LocalHost) versions(list func() ([]domain.InstalledComponent, error)) (map[string]domain.Version, error) {
	components, err := list()
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Version, len(components))
	for _, component := range components {
		version, err := domain.ParseVersion(component.Version)
		if err != nil {
			return nil, fmt.Errorf("installed plugin %s: %w", component.ID, err)
		}
		out[component.ID] = version
	}
	return out, nil
}

var _ domain.HostState = (*LocalHost)(nil)
