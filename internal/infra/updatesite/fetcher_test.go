package updatesite

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pluginsync/internal/domain"
)

const sampleCatalog = `{
  "id": "default",
  "plugins": {
    "git": {
      "name": "git",
      "version": "5.2.1",
      "dependencies": [
        {"name": "scm-api", "version": "676.v886669a_199a_a_", "optional": false},
        {"name": "credentials", "version": "1319.v7eb_51b_3a_c97b_", "optional": true}
      ]
    },
    "scm-api": {"version": "690.vfc8b_54395023"}
  }
}`

func TestDecode_PlainAndWrapped(t *testing.T) {
	plain, err := Decode([]byte(sampleCatalog))
	require.NoError(t, err)

	wrapped, err := Decode([]byte("updateCenter.post(\n" + sampleCatalog + "\n);\n"))
	require.NoError(t, err)
	require.Equal(t, plain, wrapped)

	require.Len(t, plain.Plugins, 2)
	require.Equal(t, "scm-api", plain.Plugins["scm-api"].Name)
	require.Len(t, plain.Plugins["git"].Dependencies, 2)

	plugin, version, ok := plain.Plugin("git")
	require.True(t, ok)
	require.Equal(t, "git", plugin.Name)
	require.Equal(t, "5.2.1", version.String())
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("updateCenter.post({\"plugins\":{}}"))
	require.Error(t, err)
	_, err = Decode([]byte("<html>"))
	require.Error(t, err)
}

func TestMetadataURL(t *testing.T) {
	tests := map[string]string{
		"https://updates.example.org/update-center.json": "https://updates.example.org/update-center.json",
		"https://updates.example.org/experimental":       "https://updates.example.org/experimental/update-center.json",
		"https://updates.example.org/experimental/":      "https://updates.example.org/experimental/update-center.json",
		"https://updates.example.org/stable/custom.JSON": "https://updates.example.org/stable/custom.JSON",
		"file:///var/lib/pluginsync/sites/internal.json": "file:///var/lib/pluginsync/sites/internal.json",
	}
	for in, want := range tests {
		got, err := MetadataURL(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestFetcher_ETagRoundTrip(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/site/update-center.json", r.URL.Path)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("updateCenter.post(" + sampleCatalog + ");"))
	}))
	defer server.Close()

	fetcher := NewFetcher(time.Second, zap.NewNop())
	source := domain.Source{ID: "site", URL: server.URL + "/site"}

	first, err := fetcher.Fetch(context.Background(), source, nil, "")
	require.NoError(t, err)
	require.False(t, first.NotModified)
	require.Equal(t, `"v1"`, first.ETag)
	require.Len(t, first.Catalog.Plugins, 2)

	second, err := fetcher.Fetch(context.Background(), source, nil, first.ETag)
	require.NoError(t, err)
	require.True(t, second.NotModified)
	require.Equal(t, `"v1"`, second.ETag)
	require.Equal(t, int32(2), hits.Load())
}

func TestFetcher_HTTPErrorIsNotUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewFetcher(time.Second, nil).Fetch(context.Background(), domain.Source{ID: "x", URL: server.URL}, nil, "")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrSourceUnreachable)
	require.Contains(t, err.Error(), "500")
}

func TestFetcher_ConnectionRefusedIsUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewFetcher(time.Second, nil).Fetch(context.Background(), domain.Source{ID: "gone", URL: "http://" + addr}, nil, "")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrSourceUnreachable)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeUnavailable, code)
}

func TestFetcher_UsesProxyUnlessBypassed(t *testing.T) {
	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		assert.Equal(t, "plugins.example.test", r.URL.Hostname())
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer proxy.Close()

	host, portText, err := net.SplitHostPort(proxy.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portText)
	require.NoError(t, err)
	config := &domain.ProxyConfig{Host: host, Port: port, NoProxy: []string{"127.0.0.1"}}

	fetcher := NewFetcher(time.Second, nil)
	result, err := fetcher.Fetch(context.Background(), domain.Source{ID: "p", URL: "http://plugins.example.test/"}, config, "")
	require.NoError(t, err)
	require.Len(t, result.Catalog.Plugins, 2)
	require.Equal(t, int32(1), proxied.Load())

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"plugins":{}}`))
	}))
	defer direct.Close()
	_, err = fetcher.Fetch(context.Background(), domain.Source{ID: "d", URL: direct.URL}, config, "")
	require.NoError(t, err)
	require.Equal(t, int32(1), proxied.Load())
}

func TestFetcher_FileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	fetcher := NewFetcher(0, nil)
	result, err := fetcher.Fetch(context.Background(), domain.Source{ID: "local", URL: "file://" + path}, nil, "")
	require.NoError(t, err)
	require.Len(t, result.Catalog.Plugins, 2)

	_, err = fetcher.Fetch(context.Background(), domain.Source{ID: "local", URL: "file://" + filepath.Join(dir, "missing.json")}, nil, "")
	require.ErrorIs(t, err, domain.ErrSourceUnreachable)
}
