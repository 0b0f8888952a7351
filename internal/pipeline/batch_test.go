// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notes-engine/pkg/types"
)

func TestRunBatch(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		f := newFixture()
		f.cfg.Concurrency = concurrency
		for _, p := range []string{"a.pdf", "b.pdf", "c.pdf"} {
			f.kinds[p] = types.SourcePDF
			f.pdf.texts[p] = "text of " + p
		}
		f.pdf.errs["b.pdf"] = errors.New("encrypted")
		r := f.runner(t)

		var status bytes.Buffer
		summary, err := r.RunBatch(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf"}, &status)
		require.NoError(t, err)

		assert.Equal(t, 2, summary.Processed)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 3, summary.Total())
		assert.True(t, summary.HasFailures())
		require.Len(t, summary.Results, 2)
		assert.Equal(t, "a.pdf", summary.Results[0].Source)
		assert.Equal(t, "c.pdf", summary.Results[1].Source)

		out := status.String()
		assert.Contains(t, out, "failed:  b.pdf")
		assert.Contains(t, out, "encrypted")
		assert.Contains(t, out, "saved:   a.pdf -> mem://a-notes.txt")
		assert.Contains(t, out, "Batch summary: 2 processed, 0 skipped, 1 failed (total: 3)")
	}
}

func TestRunBatch_SingleFile(t *testing.T) {
	f := newFixture()
	f.kinds["a.txt"] = types.SourceText
	f.text.texts["a.txt"] = "hello"
	f.cfg.Output = "meeting_notes.txt"

	var status bytes.Buffer
	summary, err := f.runner(t).RunBatch(context.Background(), []string{"a.txt"}, &status)
	require.NoError(t, err)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, "saved:   a.txt -> mem://meeting_notes.txt\n", status.String())
}

func TestRunBatch_OutputWithManyInputs(t *testing.T) {
	f := newFixture()
	f.cfg.Output = "out.txt"
	_, err := f.runner(t).RunBatch(context.Background(), []string{"a.pdf", "b.pdf"}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Zero(t, f.backend.calls())
}

func TestRunBatch_Cancelled(t *testing.T) {
	f := newFixture()
	f.kinds["a.txt"] = types.SourceText
	f.text.texts["a.txt"] = "hello"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.runner(t).RunBatch(ctx, []string{"a.txt"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch_RateLimited(t *testing.T) {
	f := newFixture()
	f.cfg.RequestsPerMinute = 6000
	f.cfg.Concurrency = 2
	for _, p := range []string{"a.txt", "b.txt", "c.txt"} {
		f.kinds[p] = types.SourceText
		f.text.texts[p] = "hello"
	}
	r := f.runner(t)
	require.NotNil(t, r.limiter)

	summary, err := r.RunBatch(context.Background(), []string{"a.txt", "b.txt", "c.txt"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, f.backend.calls())
}

func TestRunBatch_SameNameInDifferentFolders(t *testing.T) {
	f := newFixture()
	f.cfg.Concurrency = 2
	paths := []string{"a/meeting.pdf", "b/meeting.pdf"}
	for _, p := range paths {
		f.kinds[p] = types.SourcePDF
		f.pdf.texts[p] = "transcript of " + p
	}
	f.backend.reply = roadmapReply

	var status bytes.Buffer
	summary, err := f.runner(t).RunBatch(context.Background(), paths, &status)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Failed)

	assert.Len(t, f.store.objects, 2)
	assert.NotEmpty(t, f.store.get("a/meeting-notes.txt"))
	assert.NotEmpty(t, f.store.get("b/meeting-notes.txt"))
	assert.Contains(t, status.String(), "saved:   a/meeting.pdf -> mem://a/meeting-notes.txt")
	assert.Contains(t, status.String(), "saved:   b/meeting.pdf -> mem://b/meeting-notes.txt")
}

// flatStorage drops directories from keys, as the S3 adapter does.
type flatStorage struct {
	*memStorage
}

func (s flatStorage) Location(key string) string { return "flat://" + path.Base(key) }

func TestRunBatch_DuplicateDestination(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		flat  bool
	}{
		{name: "same file named twice", paths: []string{"a.pdf", "./a.pdf"}},
		{name: "flattening storage", paths: []string{"a/meeting.pdf", "b/meeting.pdf"}, flat: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.cfg.Concurrency = 2
			for _, p := range tt.paths {
				f.kinds[p] = types.SourcePDF
				f.pdf.texts[p] = "transcript"
			}
			deps := f.deps()
			if tt.flat {
				deps.Storage = flatStorage{f.store}
			}
			r, err := New(context.Background(), f.cfg, deps)
			require.NoError(t, err)
			defer r.Close()

			var status bytes.Buffer
			summary, err := r.RunBatch(context.Background(), tt.paths, &status)
			require.NoError(t, err)

			assert.Equal(t, 1, summary.Processed)
			assert.Equal(t, 1, summary.Failed)
			require.Len(t, summary.Results, 1)
			assert.Equal(t, tt.paths[0], summary.Results[0].Source)
			assert.Equal(t, 1, f.backend.calls())
			assert.Len(t, f.store.objects, 1)
			assert.Contains(t, status.String(), "failed:  "+tt.paths[1])
			assert.Contains(t, status.String(), ErrDuplicateDestination.Error())
		})
	}
}

func TestRunBatch_SkipExisting(t *testing.T) {
	f := newFixture()
	f.cfg.SkipExisting = true
	for _, p := range []string{"a.txt", "b.txt"} {
		f.kinds[p] = types.SourceText
		f.text.texts[p] = "hello"
	}
	require.NoError(t, f.store.Put(context.Background(), "a-notes.txt", strings.NewReader("done\n")))

	var status bytes.Buffer
	summary, err := f.runner(t).RunBatch(context.Background(), []string{"a.txt", "b.txt"}, &status)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total())
	assert.False(t, summary.HasFailures())
	assert.Equal(t, 1, f.backend.calls())
	assert.Contains(t, status.String(), "skipped: a.txt (already exists at mem://a-notes.txt)")
	assert.Contains(t, status.String(), "Batch summary: 1 processed, 1 skipped, 0 failed (total: 2)")
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"inbox/a.pdf", "inbox/sub/b.pdf", "inbox/c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	explicit := filepath.Join(dir, "inbox", "a.pdf")

	got, err := ExpandInputs([]string{explicit}, filepath.Join(dir, "inbox", "**", "*.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []string{explicit, filepath.Join(dir, "inbox", "sub", "b.pdf")}, got)

	got, err = ExpandInputs([]string{"x.pdf"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.pdf"}, got)
}
