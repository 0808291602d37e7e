package normalizer

import (
	"fmt"
	"strings"

	"pluginsync/internal/domain"
)

// NormalizeDesiredState converts the decoded document into a DesiredState,
// collecting every problem instead of stopping at the first.
func NormalizeDesiredState(raw RawDesiredState) (domain.DesiredState, []string) {
	var errs []string

	proxy, proxyErrs := ParseProxy(raw.Proxy)
	errs = append(errs, proxyErrs...)

	sources := make([]domain.SourceSpec, 0, len(raw.UpdateSites))
	for i, site := range raw.UpdateSites {
		spec, siteErrs := ParseSourceSpec(site, i)
		errs = append(errs, siteErrs...)
		sources = append(sources, spec)
	}

	required := make([]domain.RequirementSpec, 0, len(raw.Required))
	for i, entry := range raw.Required {
		spec, reqErrs := ParseRequirementSpec(entry, i)
		errs = append(errs, reqErrs...)
		required = append(required, spec)
	}

	defaultURL := strings.TrimSpace(raw.DefaultSiteURL)
	if defaultURL != "" {
		if err := validateSiteURL(defaultURL); err != nil {
			errs = append(errs, fmt.Sprintf("defaultSiteURL %v", err))
		}
	}

	return domain.DesiredState{
		Proxy:            proxy,
		Sources:          sources,
		Required:         required,
		DefaultSourceURL: defaultURL,
		StrictDuplicates: raw.StrictDuplicates,
	}, errs
}
