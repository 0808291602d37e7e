package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/updatesite"
)

// HostConfig is the persisted configuration of a host.
type HostConfig struct {
	Proxy   *domain.ProxyConfig
	Sources []domain.Source
}

// SiteMetadata is the cached catalog of one update site.
type SiteMetadata struct {
	URL       string             `json:"url"`
	ETag      string             `json:"etag,omitempty"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Catalog   updatesite.Catalog `json:"catalog"`
}

// Store persists host state in a bbolt database.
type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

func OpenStore(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	base, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := ensureSchema(base); err != nil {
		_ = base.Close()
		return nil, err
	}
	return &Store{db: base, path: trimmed}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Config reads the persisted proxy and source list.
func (s *Store) Config() (HostConfig, error) {
	var cfg HostConfig
	err := s.view(func(tx *bolt.Tx) error {
		if raw := tx.Bucket([]byte(proxyBucketName)).Get([]byte(currentKey)); raw != nil {
			var proxy domain.ProxyConfig
			if err := json.Unmarshal(raw, &proxy); err != nil {
				return fmt.Errorf("decode proxy: %w", err)
			}
			cfg.Proxy = &proxy
		}
		if raw := tx.Bucket([]byte(sourcesBucketName)).Get([]byte(currentKey)); raw != nil {
			if err := json.Unmarshal(raw, &cfg.Sources); err != nil {
				return fmt.Errorf("decode sources: %w", err)
			}
		}
		return nil
	})
	return cfg, err
}

// SaveConfig replaces the persisted proxy and source list in one transaction.
func (s *Store) SaveConfig(cfg HostConfig) error {
	return s.update(func(tx *bolt.Tx) error {
		proxyBucket := tx.Bucket([]byte(proxyBucketName))
		if cfg.Proxy == nil {
			if err := proxyBucket.Delete([]byte(currentKey)); err != nil {
				return fmt.Errorf("delete proxy: %w", err)
			}
		} else if err := putJSON(proxyBucket, currentKey, cfg.Proxy); err != nil {
			return fmt.Errorf("write proxy: %w", err)
		}
		sources := cfg.Sources
		if sources == nil {
			sources = []domain.Source{}
		}
		if err := putJSON(tx.Bucket([]byte(sourcesBucketName)), currentKey, sources); err != nil {
			return fmt.Errorf("write sources: %w", err)
		}
		return nil
	})
}

// Installed lists installed components ordered by identifier.
func (s *Store) Installed() ([]domain.InstalledComponent, error) {
	return s.components(installedBucketName)
}

// Pending lists components staged for the next restart.
func (s *Store) Pending() ([]domain.InstalledComponent, error) {
	return s.components(pendingBucketName)
}

func (s *Store) components(bucket string) ([]domain.InstalledComponent, error) {
	var out []domain.InstalledComponent
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(func(key, value []byte) error {
			out = append(out, domain.InstalledComponent{ID: string(key), Version: string(value)})
			return nil
		})
	})
	return out, err
}

// RecordInstall writes live installs and staged upgrades atomically. Staged
// entries set the restart flag.
func (s *Store) RecordInstall(live, staged []domain.InstalledComponent) error {
	return s.update(func(tx *bolt.Tx) error {
		installed := tx.Bucket([]byte(installedBucketName))
		for _, component := range live {
			if err := installed.Put([]byte(component.ID), []byte(component.Version)); err != nil {
				return fmt.Errorf("write installed %s: %w", component.ID, err)
			}
		}
		pending := tx.Bucket([]byte(pendingBucketName))
		for _, component := range staged {
			if err := pending.Put([]byte(component.ID), []byte(component.Version)); err != nil {
				return fmt.Errorf("write pending %s: %w", component.ID, err)
			}
		}
		if len(staged) == 0 {
			return nil
		}
		return tx.Bucket([]byte(metaBucketName)).Put([]byte(restartKey), []byte{1})
	})
}

// PromotePending moves staged components to installed and clears the restart flag.
func (s *Store) PromotePending() ([]domain.InstalledComponent, error) {
	var promoted []domain.InstalledComponent
	err := s.update(func(tx *bolt.Tx) error {
		pending := tx.Bucket([]byte(pendingBucketName))
		installed := tx.Bucket([]byte(installedBucketName))
		if err := pending.ForEach(func(key, value []byte) error {
			promoted = append(promoted, domain.InstalledComponent{ID: string(key), Version: string(value)})
			return installed.Put(append([]byte(nil), key...), append([]byte(nil), value...))
		}); err != nil {
			return fmt.Errorf("promote pending: %w", err)
		}
		for _, component := range promoted {
			if err := pending.Delete([]byte(component.ID)); err != nil {
				return fmt.Errorf("clear pending %s: %w", component.ID, err)
			}
		}
		return tx.Bucket([]byte(metaBucketName)).Delete([]byte(restartKey))
	})
	return promoted, err
}

func (s *Store) RestartRequired() (bool, error) {
	var required bool
	err := s.view(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(metaBucketName)).Get([]byte(restartKey))
		required = len(value) == 1 && value[0] == 1
		return nil
	})
	return required, err
}

// SiteMetadata returns the cached catalog of a site.
func (s *Store) SiteMetadata(sourceID string) (SiteMetadata, bool, error) {
	var (
		meta  SiteMetadata
		found bool
	)
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(metadataBucketName)).Get([]byte(sourceID))
		if raw == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("decode metadata %s: %w", sourceID, err)
		}
		return nil
	})
	return meta, found, err
}

func (s *Store) PutSiteMetadata(sourceID string, meta SiteMetadata) error {
	return s.update(func(tx *bolt.Tx) error {
		if err := putJSON(tx.Bucket([]byte(metadataBucketName)), sourceID, meta); err != nil {
			return fmt.Errorf("write metadata %s: %w", sourceID, err)
		}
		return nil
	})
}

// TouchSiteMetadata refreshes the fetch time of a cached catalog.
func (s *Store) TouchSiteMetadata(sourceID string, fetchedAt time.Time) error {
	meta, found, err := s.SiteMetadata(sourceID)
	if err != nil || !found {
		return err
	}
	meta.FetchedAt = fetchedAt
	return s.PutSiteMetadata(sourceID, meta)
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Update(fn)
}

func putJSON(bucket *bolt.Bucket, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(key), raw)
}
