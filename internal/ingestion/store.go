package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store manages the transient upload area. One shared root lives for the
// lifetime of the process; each request gets its own subdirectory.
type Store struct {
	root   string
	owned  bool
	logger *zap.Logger
}

// NewStore prepares the upload root. An empty root creates a fresh temp dir
// which Close removes again.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	owned := false
	if root == "" {
		dir, err := os.MkdirTemp("", "resume_uploads_")
		if err != nil {
			return nil, fmt.Errorf("failed to create uploads root: %w", err)
		}
		root = dir
		owned = true
	} else if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads root: %w", err)
	}

	return &Store{root: root, owned: owned, logger: logger.Named("store")}, nil
}

// Root returns the shared upload root
func (s *Store) Root() string {
	return s.root
}

// NewRequestDir creates a uniquely named directory for one request
func (s *Store) NewRequestDir() (string, error) {
	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create request directory: %w", err)
	}
	return dir, nil
}

// SaveUploadedFile writes content into dir under a sanitized, unique name
func (s *Store) SaveUploadedFile(dir, filename string, content io.Reader) (string, error) {
	filePath := filepath.Join(dir, uniqueName(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// Remove deletes a request directory. Missing directories are not an error.
func (s *Store) Remove(dir string) error {
	if !strings.HasPrefix(filepath.Clean(dir), filepath.Clean(s.root)+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside uploads root", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove request directory: %w", err)
	}
	s.logger.Debug("removed request directory", zap.String("dir", dir))
	return nil
}

// Close removes the root when the store created it
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to clear uploads root: %w", err)
	}
	return nil
}

// uniqueName keeps the extension so the text extractor can dispatch on it
func uniqueName(filename string) string {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeNameChars.ReplaceAllString(stem, "_"), "_.")
	if stem == "" {
		stem = "resume"
	}
	if len(stem) > 64 {
		stem = stem[:64]
	}
	return fmt.Sprintf("%s_%s%s", uuid.NewString()[:8], stem, ext)
}
