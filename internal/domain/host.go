package domain

import "context"

// ComponentManager answers queries about installed plugins.
type ComponentManager interface {
	Component(id string) (InstalledComponent, bool)
	Components() []InstalledComponent
}

// HostState is the capability set a reconciliation run needs from the host.
type HostState interface {
	Proxy() *ProxyConfig
	SetProxy(proxy *ProxyConfig) error

	Sources() []Source
	ReplaceSources(sources []Source) error
	Save() error

	// RefreshSource reloads the metadata of one site. Unreachable sites
	// return an error matching ErrSourceUnreachable.
	RefreshSource(ctx context.Context, source Source) error

	InstalledComponents() ([]InstalledComponent, error)
	Install(ctx context.Context, ids []string, resolveDependencies bool) error

	RestartRequired() bool
	Restart() error

	ComponentManager() ComponentManager
}
