// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notes-engine/pkg/types"
)

func TestLocalAdapter_Put(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	a := NewLocalAdapter(base)

	require.NoError(t, a.Put(ctx, "out/deep/roadmap-notes.txt", strings.NewReader("first")))
	data, err := os.ReadFile(filepath.Join(base, "out", "deep", "roadmap-notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Overwrite truncates.
	require.NoError(t, a.Put(ctx, "out/deep/roadmap-notes.txt", strings.NewReader("2nd")))
	data, err = os.ReadFile(filepath.Join(base, "out", "deep", "roadmap-notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "2nd", string(data))
}

func TestLocalAdapter_ExistsAndLocation(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	a := NewLocalAdapter(base)

	ok, err := a.Exists(ctx, "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Put(ctx, "present.txt", strings.NewReader("x")))
	ok, err = a.Exists(ctx, "present.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	abs := filepath.Join(t.TempDir(), "abs.txt")
	assert.Equal(t, abs, a.Location(abs))
	assert.Equal(t, filepath.Join(base, "rel.txt"), a.Location("rel.txt"))
	assert.Equal(t, "rel.txt", NewLocalAdapter("").Location("rel.txt"))
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(context.Background(), types.StorageConfig{Adapter: types.StorageLocal})
	require.NoError(t, err)
	assert.IsType(t, &LocalAdapter{}, a)

	_, err = NewAdapter(context.Background(), types.StorageConfig{Adapter: "ftp"})
	assert.Error(t, err)

	_, err = NewAdapter(context.Background(), types.StorageConfig{Adapter: types.StorageS3})
	assert.Error(t, err, "bucket is required")
}

// fakeS3 records requests and serves HEAD from the objects it has stored.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		f.objects[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) contentType(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[path]
}

func TestS3Adapter(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	a, err := NewS3Adapter(ctx, types.S3StorageConfig{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		Bucket:          "notes",
		Prefix:          "/meetings/",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)

	assert.Equal(t, "s3://notes/meetings/q3-notes.json", a.Location("out/q3-notes.json"))

	ok, err := a.Exists(ctx, "q3-notes.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Put(ctx, "out/q3-notes.json", strings.NewReader(`{"SUMMARY":"x"}`)))
	assert.Equal(t, "application/json", fake.contentType("/notes/meetings/q3-notes.json"))

	ok, err = a.Exists(ctx, "q3-notes.json")
	require.NoError(t, err)
	assert.True(t, ok)
}
