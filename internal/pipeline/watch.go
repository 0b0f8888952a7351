// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultWatchPattern selects the source files the watcher picks up.
const DefaultWatchPattern = "**/*.{pdf,mp3,wav,m4a,txt}"

// defaultExcludes keep the watcher from reprocessing its own output when
// notes are written into the watched directory.
var defaultExcludes = []string{"**/*-notes.*", "**/*-summary.*"}

// Processor runs one source file. *Runner satisfies it.
type Processor interface {
	Run(ctx context.Context, path string) (Result, error)
}

// Watcher processes files that appear in an inbox directory tree.
type Watcher struct {
	Dir       string
	Processor Processor

	// Patterns are doublestar patterns matched against slash-separated
	// paths relative to Dir. Empty means DefaultWatchPattern.
	Patterns []string

	// Exclude patterns win over Patterns.
	Exclude []string

	// Debounce is how long a file must be quiet before it is processed.
	Debounce time.Duration

	Out    io.Writer
	Logger *slog.Logger
}

// Watch blocks until ctx is cancelled, processing each new or rewritten
// file that matches once writes to it settle. Files run one at a time.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.Processor == nil {
		return errors.New("watcher has no processor")
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := w.Out
	if out == nil {
		out = io.Discard
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.Dir); err != nil {
		return err
	}
	logger.Info("watching", "dir", w.Dir, "patterns", w.patterns())

	ready := make(chan string, 64)
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(debounce)
			return
		}
		timers[path] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				w.handleEvent(fw, ev, schedule, logger)
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				logger.Error("fsnotify error", "error", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case path := <-ready:
				res, err := w.Processor.Run(gctx, path)
				switch {
				case err != nil:
					fmt.Fprintf(out, "failed:  %s (%v)\n", path, err)
				case res.Skipped:
					fmt.Fprintf(out, "skipped: %s (already exists at %s)\n", path, res.Location)
				default:
					fmt.Fprintf(out, "saved:   %s -> %s\n", path, res.Location)
				}
			}
		}
	})

	return g.Wait()
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, schedule func(string), logger *slog.Logger) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) {
			if err := addTree(fw, ev.Name); err != nil {
				logger.Warn("watching new directory", "dir", ev.Name, "error", err)
			}
		}
		return
	}
	if !w.Matches(ev.Name) {
		logger.Debug("ignoring", "path", ev.Name)
		return
	}
	schedule(ev.Name)
}

func (w *Watcher) patterns() []string {
	if len(w.Patterns) == 0 {
		return []string{DefaultWatchPattern}
	}
	return w.Patterns
}

// Matches reports whether path, inside Dir, should be processed.
func (w *Watcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.Dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	excludes := w.Exclude
	if excludes == nil {
		excludes = defaultExcludes
	}
	for _, p := range excludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	for _, p := range w.patterns() {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it. fsnotify does not
// recurse on its own.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
