// Package media stores uploaded files for use in image, video and audio
// blocks. Files are content-addressed and written atomically, so a crashed
// upload never leaves a partial file behind.
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nodepress/designer/internal/logging"
)

var (
	ErrTooLarge        = errors.New("upload exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUploadNotFound  = errors.New("upload not found")
	ErrEmptyUpload     = errors.New("empty upload")
)

// DefaultMaxBytes caps uploads at 32 MiB.
const DefaultMaxBytes = 32 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".ico": true,
	".mp4": true, ".webm": true, ".mov": true,
	".mp3": true, ".wav": true, ".ogg": true,
	".pdf": true, ".woff": true, ".woff2": true,
}

// Upload describes a stored file.
type Upload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store is a filesystem-backed upload store. urlPrefix is the public path
// uploads are served under.
type Store struct {
	rootDir   string
	urlPrefix string
	maxBytes  int64
	logger    logging.Logger
}

func NewStore(rootDir, urlPrefix string, maxBytes int64, logger logging.Logger) (*Store, error) {
	if rootDir == "" {
		return nil, errors.New("media: rootDir is required")
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if urlPrefix == "" {
		urlPrefix = "/media"
	}
	return &Store{
		rootDir:   filepath.Clean(rootDir),
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
		logger:    logger.With(logging.Field{Key: "component", Value: "media"}),
	}, nil
}

// Save stores an upload and returns its public URL. The stored name is the
// content hash plus the original extension, so re-uploading the same file
// yields the same URL.
func (s *Store) Save(filename string, r io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	tmp, err := os.CreateTemp(s.rootDir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	hasher := sha256.New()
	// Read one byte past the cap to tell "exactly at limit" from "over".
	n, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyUpload
	}
	if n > s.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close upload: %w", err)
	}

	name := hex.EncodeToString(hasher.Sum(nil))[:32] + ext
	finalPath := filepath.Join(s.rootDir, name)

	if _, err := os.Stat(finalPath); err == nil {
		return &Upload{Name: name, URL: s.urlPrefix + "/" + name, Size: n}, nil
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return nil, fmt.Errorf("chmod upload: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	s.logger.Info("upload stored",
		logging.Field{Key: "name", Value: name},
		logging.Field{Key: "size", Value: n})

	return &Upload{Name: name, URL: s.urlPrefix + "/" + name, Size: n}, nil
}

// Open returns a reader for a stored upload.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	path, err := s.safePath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, name)
		}
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return f, nil
}

// Delete removes a stored upload. Missing files are not an error.
func (s *Store) Delete(name string) error {
	path, err := s.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// List returns all stored uploads sorted by name.
func (s *Store) List() ([]Upload, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	var out []Upload
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Upload{
			Name: e.Name(),
			URL:  s.urlPrefix + "/" + e.Name(),
			Size: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Dir returns the root directory uploads are stored in.
func (s *Store) Dir() string { return s.rootDir }

// safePath rejects names that would escape the store directory.
func (s *Store) safePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrUploadNotFound, name)
	}
	return filepath.Join(s.rootDir, name), nil
}
