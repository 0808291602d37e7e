package host

import (
	"pluginsync/internal/domain"
	"pluginsync/internal/infra/updatesite"
)

type installTarget struct {
	id      string
	version domain.Version
}

// resolveTargets picks the newest offered version of each id. With
// resolveDependencies, required dependencies that are absent or older than
// declared are added after the component that needs them.
func resolveTargets(
	ids []string,
	catalogs []updatesite.Catalog,
	installed map[string]domain.Version,
	pending map[string]domain.Version,
	resolveDependencies bool,
) ([]installTarget, []string) {
	var (
		targets []installTarget
		unknown []string
		queue   = append([]string(nil), ids...)
		seen    = make(map[string]struct{}, len(ids))
	)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		plugin, version, ok := newest(id, catalogs)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		targets = append(targets, installTarget{id: id, version: version})
		if !resolveDependencies {
			continue
		}
		for _, dep := range plugin.Dependencies {
			if dep.Optional || satisfied(dep, installed, pending) {
				continue
			}
			queue = append(queue, dep.Name)
		}
	}
	return targets, unknown
}

func newest(id string, catalogs []updatesite.Catalog) (updatesite.Plugin, domain.Version, bool) {
	var (
		best        updatesite.Plugin
		bestVersion domain.Version
		found       bool
	)
	for _, catalog := range catalogs {
		plugin, version, ok := catalog.Plugin(id)
		if !ok {
			continue
		}
		if !found || version.IsNewerThan(bestVersion) {
			best, bestVersion, found = plugin, version, true
		}
	}
	return best, bestVersion, found
}

func satisfied(dep updatesite.Dependency, installed, pending map[string]domain.Version) bool {
	required, err := domain.ParseVersion(dep.Version)
	for _, versions := range []map[string]domain.Version{pending, installed} {
		current, ok := versions[dep.Name]
		if !ok {
			continue
		}
		if err != nil || !current.IsOlderThan(required) {
			return true
		}
	}
	return false
}
