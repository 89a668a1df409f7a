package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/propensity/pkg/logger"
)

const backendFile = "file"

// FileStore reads objects from a local directory. Keys are slash-separated
// paths relative to the root and cannot escape it.
type FileStore struct {
	root     string
	maxBytes int64
	logger   logger.Logger
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("storage dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage dir %s: not a directory", dir)
	}
	set := newSettings(opts)
	return &FileStore{root: dir, maxBytes: set.maxBytes, logger: set.logger}, nil
}

// Fetch reads key below the root directory.
func (s *FileStore) Fetch(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(backendFile, start, data, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	name := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f, err := os.OpenInRoot(s.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = f.Close() }()

	data, err = readAll(f, key, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "read object", logger.String("root", s.root), logger.String("key", key), logger.Int("bytes", len(data)))
	}
	return data, nil
}
