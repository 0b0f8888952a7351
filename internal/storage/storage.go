// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists rendered notes to the local filesystem or an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/notes-engine/pkg/types"
)

// Adapter writes named objects to a backend.
type Adapter interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data io.Reader) error

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Location returns a human-readable address for key (a file path or
	// an s3:// URL) for status output.
	Location(key string) string

	// Close releases any resources held by the adapter.
	Close() error
}

// NewAdapter builds the adapter selected by cfg.Adapter.
func NewAdapter(ctx context.Context, cfg types.StorageConfig) (Adapter, error) {
	switch cfg.Adapter {
	case "", types.StorageLocal:
		return NewLocalAdapter(cfg.Local.BasePath), nil
	case types.StorageS3:
		return NewS3Adapter(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", cfg.Adapter)
	}
}
