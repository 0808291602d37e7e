package domain

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ProxyConfig is the host's outbound HTTP proxy slot.
type ProxyConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	User     string   `json:"user,omitempty"`
	Password string   `json:"password,omitempty"`
	NoProxy  []string `json:"noProxy,omitempty"`
}

// URL returns the proxy as an http URL, or nil when no host is set.
func (p *ProxyConfig) URL() *url.URL {
	if p == nil || strings.TrimSpace(p.Host) == "" {
		return nil
	}
	host := p.Host
	if p.Port > 0 {
		host = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	}
	u := &url.URL{Scheme: "http", Host: host}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u
}

// Bypass reports whether requests to host skip the proxy.
func (p *ProxyConfig) Bypass(host string) bool {
	if p == nil {
		return true
	}
	host = strings.ToLower(host)
	for _, entry := range p.NoProxy {
		pattern := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(entry)), "*"), ".")
		if pattern == "" {
			continue
		}
		if host == pattern || strings.HasSuffix(host, "."+pattern) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *ProxyConfig) Clone() *ProxyConfig {
	if p == nil {
		return nil
	}
	out := *p
	out.NoProxy = append([]string(nil), p.NoProxy...)
	return &out
}
