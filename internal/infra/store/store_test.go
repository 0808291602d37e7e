package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/updatesite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestStore_ConfigRoundTrip(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.Config()
	require.NoError(t, err)
	require.Nil(t, empty.Proxy)
	require.Empty(t, empty.Sources)

	cfg := HostConfig{
		Proxy: &domain.ProxyConfig{Host: "proxy", Port: 3128, NoProxy: []string{"localhost"}},
		Sources: []domain.Source{
			{ID: "default", URL: "https://updates.example.org"},
			{ID: "alpha", URL: "https://alpha.example.org"},
		},
	}
	require.NoError(t, store.SaveConfig(cfg))

	got, err := store.Config()
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	require.NoError(t, store.SaveConfig(HostConfig{Sources: cfg.Sources[:1]}))
	got, err = store.Config()
	require.NoError(t, err)
	require.Nil(t, got.Proxy)
	require.Equal(t, cfg.Sources[:1], got.Sources)
}

func TestStore_InstallAndPromote(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordInstall([]domain.InstalledComponent{{ID: "git", Version: "5.0"}}, nil))
	restart, err := store.RestartRequired()
	require.NoError(t, err)
	require.False(t, restart)

	require.NoError(t, store.RecordInstall(
		[]domain.InstalledComponent{{ID: "ssh", Version: "1.0"}},
		[]domain.InstalledComponent{{ID: "git", Version: "5.2"}},
	))
	restart, err = store.RestartRequired()
	require.NoError(t, err)
	require.True(t, restart)

	installed, err := store.Installed()
	require.NoError(t, err)
	require.Equal(t, []domain.InstalledComponent{{ID: "git", Version: "5.0"}, {ID: "ssh", Version: "1.0"}}, installed)

	pending, err := store.Pending()
	require.NoError(t, err)
	require.Equal(t, []domain.InstalledComponent{{ID: "git", Version: "5.2"}}, pending)

	promoted, err := store.PromotePending()
	require.NoError(t, err)
	require.Equal(t, pending, promoted)

	installed, err = store.Installed()
	require.NoError(t, err)
	require.Equal(t, []domain.InstalledComponent{{ID: "git", Version: "5.2"}, {ID: "ssh", Version: "1.0"}}, installed)
	pending, err = store.Pending()
	require.NoError(t, err)
	require.Empty(t, pending)
	restart, err = store.RestartRequired()
	require.NoError(t, err)
	require.False(t, restart)
}

func TestStore_SiteMetadata(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.SiteMetadata("default")
	require.NoError(t, err)
	require.False(t, found)

	fetchedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	meta := SiteMetadata{
		URL:       "https://updates.example.org/update-center.json",
		ETag:      `"abc"`,
		FetchedAt: fetchedAt,
		Catalog: updatesite.Catalog{Plugins: map[string]updatesite.Plugin{
			"git": {Name: "git", Version: "5.2"},
		}},
	}
	require.NoError(t, store.PutSiteMetadata("default", meta))

	got, found, err := store.SiteMetadata("default")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, meta, got)

	later := fetchedAt.Add(time.Hour)
	require.NoError(t, store.TouchSiteMetadata("default", later))
	got, _, err = store.SiteMetadata("default")
	require.NoError(t, err)
	require.True(t, later.Equal(got.FetchedAt))
	require.NoError(t, store.TouchSiteMetadata("absent", later))
}

func TestStore_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordInstall([]domain.InstalledComponent{{ID: "git", Version: "5.0"}}, nil))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()
	installed, err := reopened.Installed()
	require.NoError(t, err)
	require.Len(t, installed, 1)
}

func TestStore_ClosedReturnsError(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Installed()
	require.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestOpenStore_RequiresPath(t *testing.T) {
	_, err := OpenStore("  ")
	require.Error(t, err)
}

func TestResolveDefaultPath(t *testing.T) {
	require.Equal(t, defaultStateFileName, filepath.Base(ResolveDefaultPath()))
	require.Equal(t, "pluginsync", filepath.Base(filepath.Dir(ResolveDefaultPath())))
}
