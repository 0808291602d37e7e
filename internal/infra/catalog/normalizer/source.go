package normalizer

import (
	"fmt"
	"net/url"
	"strings"

	"pluginsync/internal/domain"
)

// ParseSourceSpec normalizes one updateSites entry.
func ParseSourceSpec(raw RawSourceSpec, index int) (domain.SourceSpec, []string) {
	var errs []string
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		errs = append(errs, fmt.Sprintf("updateSites[%d]: id is required", index))
	}
	rawURL := strings.TrimSpace(raw.URL)
	if err := validateSiteURL(rawURL); err != nil {
		errs = append(errs, fmt.Sprintf("updateSites[%d]: url %v", index, err))
	}
	return domain.SourceSpec{ID: id, URL: rawURL}, errs
}

func validateSiteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL (%v)", err)
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return fmt.Errorf("must include a host")
		}
	case "file":
		if parsed.Path == "" {
			return fmt.Errorf("must include a path")
		}
	default:
		return fmt.Errorf("must use http, https or file scheme")
	}
	return nil
}
