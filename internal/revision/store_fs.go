package revision

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore implements content-addressed blob storage on the filesystem.
// Blobs are named by SHA-256 hash; the first two characters of the hash form
// a subdirectory to avoid too many files in one directory.
type FSStore struct {
	blobsDir string
}

// NewFSStore creates a new FSStore rooted at the given blobs directory.
func NewFSStore(blobsDir string) (*FSStore, error) {
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}
	return &FSStore{blobsDir: blobsDir}, nil
}

// Put stores content and returns its content-addressed ID (SHA-256 hex).
// Identical content is stored once.
func (fs *FSStore) Put(data []byte) (string, error) {
	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])

	blobPath := fs.blobPath(hashStr)
	if _, err := os.Stat(blobPath); err == nil {
		return hashStr, nil
	}

	subdir := filepath.Join(fs.blobsDir, hashStr[:2])
	if err := os.MkdirAll(subdir, 0755); err != nil {
		return "", fmt.Errorf("failed to create blob subdirectory: %w", err)
	}

	if err := AtomicWriteFile(blobPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return hashStr, nil
}

// Get retrieves content by its content-addressed ID and verifies integrity.
func (fs *FSStore) Get(blobID string) ([]byte, error) {
	data, err := os.ReadFile(fs.blobPath(blobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", blobID)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	hash := sha256.Sum256(data)
	if hashStr := hex.EncodeToString(hash[:]); hashStr != blobID {
		return nil, fmt.Errorf("blob integrity check failed: expected %s, got %s", blobID, hashStr)
	}

	return data, nil
}

// Exists checks if a blob with the given ID exists.
func (fs *FSStore) Exists(blobID string) bool {
	_, err := os.Stat(fs.blobPath(blobID))
	return err == nil
}

// Delete removes a blob. Only meant for garbage collection.
func (fs *FSStore) Delete(blobID string) error {
	if err := os.Remove(fs.blobPath(blobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// blobPath returns blobsDir/{first2chars}/{fullhash}. Short IDs get an
// unreachable path so lookups fail safely instead of escaping the store.
func (fs *FSStore) blobPath(blobID string) string {
	if len(blobID) < 2 {
		return filepath.Join(fs.blobsDir, "__invalid__", blobID)
	}
	return filepath.Join(fs.blobsDir, blobID[:2], blobID)
}

// AtomicWriteFile writes data to a temp file in the target directory and
// renames it into place, so readers never observe a partial write.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
