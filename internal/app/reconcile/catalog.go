package reconcile

import (
	"fmt"

	"pluginsync/internal/domain"
)

// SourceCatalog is the merged, identifier-keyed set of update sites.
type SourceCatalog struct {
	order []string
	byID  map[string]domain.Source
}

// MergeSources inserts existingDefault first and the declared sites second, so a
// declared "default" overrides the built-in one. Later declarations win.
func MergeSources(existingDefault domain.Source, declared []domain.SourceSpec) (SourceCatalog, error) {
	if existingDefault.ID != domain.DefaultSourceID {
		return SourceCatalog{}, domain.Malformed("merge sources",
			fmt.Sprintf("default site must have id %q, got %q", domain.DefaultSourceID, existingDefault.ID))
	}
	catalog := SourceCatalog{byID: make(map[string]domain.Source, len(declared)+1)}
	catalog.put(existingDefault)
	for _, spec := range declared {
		catalog.put(spec.Source())
	}
	return catalog, nil
}

func (c *SourceCatalog) put(source domain.Source) {
	if _, exists := c.byID[source.ID]; !exists {
		c.order = append(c.order, source.ID)
	}
	c.byID[source.ID] = source
}

// Sources returns the sites in first-insertion order.
func (c SourceCatalog) Sources() []domain.Source {
	out := make([]domain.Source, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Map returns a copy of the identifier-keyed view.
func (c SourceCatalog) Map() map[string]domain.Source {
	out := make(map[string]domain.Source, len(c.byID))
	for id, source := range c.byID {
		out[id] = source
	}
	return out
}

func (c SourceCatalog) Get(id string) (domain.Source, bool) {
	source, ok := c.byID[id]
	return source, ok
}

func (c SourceCatalog) Len() int {
	return len(c.order)
}

// DefaultSource picks the host's current default site, falling back to fallbackURL.
func DefaultSource(hostSources []domain.Source, fallbackURL string) domain.Source {
	for _, source := range hostSources {
		if source.ID == domain.DefaultSourceID {
			return source
		}
	}
	if fallbackURL == "" {
		fallbackURL = domain.DefaultSourceURL
	}
	return domain.Source{ID: domain.DefaultSourceID, URL: fallbackURL}
}
