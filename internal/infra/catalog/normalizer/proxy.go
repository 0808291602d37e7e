package normalizer

import (
	"fmt"
	"strings"

	"pluginsync/internal/domain"
)

// ParseProxy normalizes the optional proxy block. A nil block leaves the host
// proxy untouched.
func ParseProxy(raw *RawProxyConfig) (*domain.ProxyConfig, []string) {
	if raw == nil {
		return nil, nil
	}
	var errs []string
	host := strings.TrimSpace(raw.Host)
	if host == "" {
		errs = append(errs, "proxy.host is required")
	}
	if strings.Contains(host, "://") {
		errs = append(errs, "proxy.host must be a host name, not a URL")
	}
	if raw.Port < 0 || raw.Port > 65535 {
		errs = append(errs, fmt.Sprintf("proxy.port must be between 0 and 65535, got %d", raw.Port))
	}
	user := strings.TrimSpace(raw.User)
	if user == "" && raw.Password != "" {
		errs = append(errs, "proxy.password requires proxy.user")
	}
	return &domain.ProxyConfig{
		Host:     host,
		Port:     raw.Port,
		User:     user,
		Password: raw.Password,
		NoProxy:  splitNoProxy(raw.NoProxy),
	}, errs
}

// splitNoProxy accepts entries separated by commas, whitespace or newlines.
func splitNoProxy(entries []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		for _, field := range strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || r == '|' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		}) {
			if _, ok := seen[field]; ok {
				continue
			}
			seen[field] = struct{}{}
			out = append(out, field)
		}
	}
	return out
}
