// Package fileid resolves file paths to the stable source key stored with documents
// ingested from disk, so CLI ingestion and watcher events agree on identity.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"path/filepath"
)

// SourcePath returns the cleaned absolute path with symlinks resolved where possible.
// A path that no longer exists (a watcher removal) resolves without following links.
func SourcePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return resolved, nil
}

// Key returns a short stable key for a source path, used in logs and watcher
// debounce maps.
func Key(sourcePath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(sourcePath)))
	return hex.EncodeToString(sum[:8])
}
