// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalAdapter writes objects as files. Relative keys resolve against the
// base path; absolute keys are used as given.
type LocalAdapter struct {
	basePath string
}

// NewLocalAdapter returns an adapter rooted at basePath ("." when empty).
func NewLocalAdapter(basePath string) *LocalAdapter {
	if basePath == "" {
		basePath = "."
	}
	return &LocalAdapter{basePath: basePath}
}

// Put writes data to the file for key, creating parent directories and
// truncating an existing file.
func (l *LocalAdapter) Put(_ context.Context, key string, data io.Reader) error {
	path := l.Location(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (l *LocalAdapter) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(l.Location(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *LocalAdapter) Location(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(l.basePath, key)
}

func (l *LocalAdapter) Close() error { return nil }
