// Package storage keeps off-database copies of snapshot payloads. The
// database row stays authoritative; archive copies survive a lost database.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ignite/enquiry-crm/internal/config"
)

// Archive stores snapshot payloads under slash-separated keys.
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
	Check(ctx context.Context) error
	Name() string
}

// New builds the archive selected by cfg.Type. "none" (or empty) returns a
// nil Archive and no error.
func New(ctx context.Context, cfg config.StorageConfig) (Archive, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalArchive(cfg.LocalPath)
	case "s3":
		return NewS3Archive(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// LocalArchive writes payloads below a root directory.
type LocalArchive struct {
	root string
}

func NewLocalArchive(root string) (*LocalArchive, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage path is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalArchive{root: root}, nil
}

func (a *LocalArchive) Name() string { return "local" }

// Put writes to a temp file and renames it into place so a crash never
// leaves a truncated payload under the final key.
func (a *LocalArchive) Put(_ context.Context, key string, data []byte) error {
	path, err := a.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Check verifies the root directory is writable.
func (a *LocalArchive) Check(_ context.Context) error {
	f, err := os.CreateTemp(a.root, ".healthcheck-*")
	if err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (a *LocalArchive) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return filepath.Join(a.root, clean), nil
}
