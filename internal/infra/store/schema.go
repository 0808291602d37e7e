package store

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const (
	schemaVersion = 1

	sourcesBucketName   = "sources"
	proxyBucketName     = "proxy"
	installedBucketName = "installed"
	pendingBucketName   = "pending"
	metadataBucketName  = "metadata"
	metaBucketName      = "meta"

	currentKey = "current"
	versionKey = "version"
	restartKey = "restart_required"
)

var allBuckets = []string{
	sourcesBucketName,
	proxyBucketName,
	installedBucketName,
	pendingBucketName,
	metadataBucketName,
	metaBucketName,
}

func ensureSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(metaBucketName))
		currentVersion := readSchemaVersion(meta)
		switch {
		case currentVersion == 0:
			return writeSchemaVersion(meta, schemaVersion)
		case currentVersion > schemaVersion:
			return fmt.Errorf("unsupported state schema version %d", currentVersion)
		default:
			return nil
		}
	})
}

func readSchemaVersion(meta *bolt.Bucket) int {
	if meta == nil {
		return 0
	}
	raw := meta.Get([]byte(versionKey))
	if len(raw) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(raw))
}

func writeSchemaVersion(meta *bolt.Bucket, version int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(version))
	return meta.Put([]byte(versionKey), buf)
}
