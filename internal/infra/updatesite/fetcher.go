package updatesite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/telemetry"
)

const (
	DefaultTimeout = 10 * time.Second
	metadataFile   = "update-center.json"
	maxBodyBytes   = 64 << 20
	userAgent      = "pluginsync"
)

// Result is the outcome of one metadata fetch.
type Result struct {
	URL         string
	ETag        string
	NotModified bool
	Catalog     Catalog
}

// Fetcher downloads update-center metadata.
type Fetcher struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{timeout: timeout, logger: logger.Named("updatesite")}
}

// MetadataURL returns the document location for a site URL. Site URLs that
// do not name a .json document get update-center.json appended.
func MetadataURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse site url: %w", err)
	}
	if strings.HasSuffix(strings.ToLower(parsed.Path), ".json") {
		return parsed.String(), nil
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/" + metadataFile
	return parsed.String(), nil
}

// Fetch retrieves the metadata of source. When etag matches the server copy
// the result is NotModified and carries no catalog.
func (f *Fetcher) Fetch(ctx context.Context, source domain.Source, proxy *domain.ProxyConfig, etag string) (Result, error) {
	target, err := MetadataURL(source.URL)
	if err != nil {
		return Result{}, err
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return Result{}, fmt.Errorf("parse site url: %w", err)
	}
	if parsed.Scheme == "file" {
		return f.fetchFile(parsed)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/javascript")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	client := &http.Client{Transport: newTransport(proxy)}
	resp, err := client.Do(req)
	if err != nil {
		if isUnreachable(err) {
			return Result{}, domain.E(domain.CodeUnavailable, "fetch update site", fmt.Sprintf("%s: %v", source.ID, err), domain.ErrSourceUnreachable)
		}
		return Result{}, fmt.Errorf("fetch %s: %w", telemetry.RedactURL(target), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		f.logger.Debug("update site not modified", telemetry.SourceField(source.ID))
		return Result{URL: target, ETag: etag, NotModified: true}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("fetch %s: unexpected status %s", telemetry.RedactURL(target), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", telemetry.RedactURL(target), err)
	}
	catalog, err := Decode(body)
	if err != nil {
		return Result{}, err
	}
	f.logger.Debug("update site fetched",
		telemetry.SourceField(source.ID),
		zap.Int("plugins", len(catalog.Plugins)),
	)
	return Result{URL: target, ETag: resp.Header.Get("ETag"), Catalog: catalog}, nil
}

func (f *Fetcher) fetchFile(target *url.URL) (Result, error) {
	body, err := os.ReadFile(target.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, domain.E(domain.CodeUnavailable, "fetch update site", err.Error(), domain.ErrSourceUnreachable)
		}
		return Result{}, fmt.Errorf("read %s: %w", target.Path, err)
	}
	catalog, err := Decode(body)
	if err != nil {
		return Result{}, err
	}
	return Result{URL: target.String(), Catalog: catalog}, nil
}

func newTransport(proxy *domain.ProxyConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	proxyURL := proxy.URL()
	if proxyURL == nil {
		transport.Proxy = nil
		return transport
	}
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if proxy.Bypass(req.URL.Hostname()) {
			return nil, nil
		}
		return proxyURL, nil
	}
	return transport
}

// isUnreachable reports name-resolution and connect failures.
func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}
