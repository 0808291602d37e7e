package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"pluginsync/internal/domain"
)

type fakeHost struct {
	mu sync.Mutex

	proxy     *domain.ProxyConfig
	sources   []domain.Source
	installed map[string]string
	// available maps plugin ids to the version an install would produce.
	available map[string]string
	// cached maps source ids to the metadata version last refreshed.
	cached map[string]int

	unreachable map[string]bool
	refreshErr  error
	installErr  error
	setProxyErr error
	saveErr     error

	restartOnInstall bool
	restartRequired  bool
	restarts         int
	saves            int
	installCalls     [][]string
	resolveDeps      []bool
	calls            []string

	onReplace func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		installed:   map[string]string{},
		available:   map[string]string{},
		cached:      map[string]int{},
		unreachable: map[string]bool{},
	}
}

func (h *fakeHost) record(call string) {
	h.calls = append(h.calls, call)
}

func (h *fakeHost) Proxy() *domain.ProxyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proxy.Clone()
}

func (h *fakeHost) SetProxy(proxy *domain.ProxyConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("set-proxy")
	if h.setProxyErr != nil && proxy != nil {
		return h.setProxyErr
	}
	h.proxy = proxy.Clone()
	return nil
}

func (h *fakeHost) Sources() []domain.Source {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Source(nil), h.sources...)
}

func (h *fakeHost) ReplaceSources(sources []domain.Source) error {
	h.mu.Lock()
	h.record("replace-sources")
	h.sources = append([]domain.Source(nil), sources...)
	hook := h.onReplace
	h.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (h *fakeHost) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("save")
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saves++
	return nil
}

func (h *fakeHost) RefreshSource(_ context.Context, source domain.Source) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("refresh:" + source.ID)
	if h.unreachable[source.ID] {
		return domain.E(domain.CodeUnavailable, "refresh", "dial tcp: no such host", domain.ErrSourceUnreachable)
	}
	if h.refreshErr != nil {
		return h.refreshErr
	}
	h.cached[source.ID]++
	return nil
}

func (h *fakeHost) InstalledComponents() ([]domain.InstalledComponent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.InstalledComponent, 0, len(h.installed))
	for id, version := range h.installed {
		out = append(out, domain.InstalledComponent{ID: id, Version: version})
	}
	return out, nil
}

func (h *fakeHost) Install(_ context.Context, ids []string, resolveDependencies bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("install")
	h.installCalls = append(h.installCalls, append([]string(nil), ids...))
	h.resolveDeps = append(h.resolveDeps, resolveDependencies)
	if h.installErr != nil {
		return h.installErr
	}
	for _, id := range ids {
		version, ok := h.available[id]
		if !ok {
			return errors.New("no such plugin: " + id)
		}
		h.installed[id] = version
	}
	if h.restartOnInstall {
		h.restartRequired = true
	}
	return nil
}

func (h *fakeHost) RestartRequired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restartRequired
}

func (h *fakeHost) Restart() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("restart")
	h.restarts++
	h.restartRequired = false
	return nil
}

func (h *fakeHost) ComponentManager() domain.ComponentManager {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshot := make(map[string]string, len(h.installed))
	for id, version := range h.installed {
		snapshot[id] = version
	}
	return fakeManager(snapshot)
}

type fakeManager map[string]string

func (m fakeManager) Component(id string) (domain.InstalledComponent, bool) {
	version, ok := m[id]
	return domain.InstalledComponent{ID: id, Version: version}, ok
}

func (m fakeManager) Components() []domain.InstalledComponent {
	out := make([]domain.InstalledComponent, 0, len(m))
	for id, version := range m {
		out = append(out, domain.InstalledComponent{ID: id, Version: version})
	}
	return out
}

type recordingMetrics struct {
	runs      []domain.RunResultLabel
	plans     []domain.ActionPlan
	refreshes map[string]domain.RefreshResult
	restarts  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{refreshes: map[string]domain.RefreshResult{}}
}

func (m *recordingMetrics) ObserveRun(result domain.RunResultLabel, _ time.Duration) {
	m.runs = append(m.runs, result)
}

func (m *recordingMetrics) ObservePlan(plan domain.ActionPlan) {
	m.plans = append(m.plans, plan)
}

func (m *recordingMetrics) ObserveSourceRefresh(sourceID string, result domain.RefreshResult) {
	m.refreshes[sourceID] = result
}

func (m *recordingMetrics) RecordRestart() {
	m.restarts++
}

func reqs(pairs ...string) []domain.RequirementSpec {
	out := make([]domain.RequirementSpec, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.RequirementSpec{ID: pairs[i], MinVersion: pairs[i+1]})
	}
	return out
}
