package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on disk under root/bucket. The HTTP layer serves
// root at /public so PublicURL resolves.
type LocalStore struct {
	root    string
	bucket  string
	baseURL string
}

func NewLocalStore(root, bucket, baseURL string) *LocalStore {
	return &LocalStore{root: root, bucket: bucket, baseURL: baseURL}
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	base, err := filepath.Abs(filepath.Join(s.root, s.bucket))
	if err != nil {
		return "", err
	}
	dst, err := filepath.Abs(filepath.Join(base, filepath.FromSlash(key)))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(dst, base+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return dst, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o640); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return publicURL(s.baseURL, s.bucket, key)
}

func (s *LocalStore) Ping(ctx context.Context) error {
	return os.MkdirAll(filepath.Join(s.root, s.bucket), 0o750)
}
