package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
)

// DesiredStateFingerprint returns a stable hash of a desired state and logs on failure.
func DesiredStateFingerprint(logger *zap.Logger, desired domain.DesiredState) string {
	return hashWithLogger(logger, "desired_state", func() (string, error) {
		return HashJSON(desired)
	})
}

// HashJSON hashes the JSON encoding of value.
func HashJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func hashWithLogger(logger *zap.Logger, label string, fn func() (string, error)) string {
	etag, err := fn()
	if err != nil {
		if logger != nil {
			logger.Warn(fmt.Sprintf("%s hash failed", label), zap.Error(err))
		}
		return ""
	}
	return etag
}
