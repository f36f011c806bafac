package export

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"repoexport/internal/output"
)

// FingerprintStore maps repository-relative paths to hex-encoded content
// digests. It is read at the start of every export run and rewritten
// wholesale at the end of every non-dry run.
type FingerprintStore map[string]string

// LoadStore reads the fingerprint table at storePath. A missing or corrupt
// store is recovered as an empty table, which causes a full re-export on this
// run instead of a hard failure.
func LoadStore(storePath string, logger *zap.Logger) FingerprintStore {
	storeData, readError := os.ReadFile(storePath)
	if readError != nil {
		if !os.IsNotExist(readError) {
			logger.Warn("fingerprint store unreadable, starting empty",
				zap.String("path", storePath), zap.Error(readError))
		}
		return FingerprintStore{}
	}
	var store FingerprintStore
	if unmarshalError := json.Unmarshal(storeData, &store); unmarshalError != nil {
		logger.Warn("fingerprint store corrupt, starting empty",
			zap.String("path", storePath), zap.Error(unmarshalError))
		return FingerprintStore{}
	}
	if store == nil {
		store = FingerprintStore{}
	}
	return store
}

// SaveStore atomically replaces the fingerprint table at storePath so the
// store is never left mixing entries from different runs.
func SaveStore(storePath string, store FingerprintStore) error {
	encodedStore, marshalError := json.MarshalIndent(store, "", "  ")
	if marshalError != nil {
		return fmt.Errorf("encoding fingerprint store: %w", marshalError)
	}
	if writeError := output.WriteAtomicBytes(storePath, encodedStore); writeError != nil {
		return fmt.Errorf("persisting fingerprint store: %w", writeError)
	}
	return nil
}

// Fingerprint returns the hex-encoded SHA-1 digest of the decoded file
// content. The digest detects content changes between runs; collision
// resistance beyond that is not required.
func Fingerprint(content []byte) string {
	digest := sha1.Sum(content)
	return hex.EncodeToString(digest[:])
}
