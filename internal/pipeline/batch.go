// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Results   []Result
}

// Total returns the number of sources attempted.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any source failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunBatch processes paths with at most cfg.Concurrency files in flight,
// printing one status line per file to w. A failed file is counted and the
// batch continues. An input whose storage location matches an earlier
// input's fails with ErrDuplicateDestination without being run. Results are
// returned in input order; only processed runs are included.
func (r *Runner) RunBatch(ctx context.Context, paths []string, w io.Writer) (BatchSummary, error) {
	if r.cfg.Output != "" && len(paths) > 1 {
		return BatchSummary{}, fmt.Errorf("--output names a single destination but %d inputs were given", len(paths))
	}

	limit := r.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}

	results := make([]Result, len(paths))
	errs := r.claimDestinations(paths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range paths {
		if errs[i] != nil {
			r.status(w, "failed:  %s (%v)\n", p, errs[i])
			continue
		}
		g.Go(func() error {
			results[i], errs[i] = r.Run(gctx, p)
			switch {
			case errs[i] != nil:
				r.status(w, "failed:  %s (%v)\n", p, errs[i])
			case results[i].Skipped:
				r.status(w, "skipped: %s (already exists at %s)\n", p, results[i].Location)
			default:
				r.status(w, "saved:   %s -> %s\n", p, results[i].Location)
			}
			return nil
		})
	}
	_ = g.Wait()

	var summary BatchSummary
	for i := range paths {
		switch {
		case errs[i] != nil:
			summary.Failed++
		case results[i].Skipped:
			summary.Skipped++
		default:
			summary.Processed++
			summary.Results = append(summary.Results, results[i])
		}
	}

	if len(paths) > 1 {
		r.status(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
			summary.Processed, summary.Skipped, summary.Failed, summary.Total())
	}
	return summary, ctx.Err()
}

// claimDestinations returns, per path, ErrDuplicateDestination when an
// earlier path already resolves to the same storage location. The S3
// adapter flattens directories, so locations are compared rather than
// destination names.
func (r *Runner) claimDestinations(paths []string) []error {
	errs := make([]error, len(paths))
	claimed := make(map[string]string, len(paths))
	for i, p := range paths {
		loc := r.deps.Storage.Location(Destination(p, r.cfg))
		if first, ok := claimed[loc]; ok {
			errs[i] = fmt.Errorf("%s is also the destination of %s: %w", loc, first, ErrDuplicateDestination)
			continue
		}
		claimed[loc] = p
	}
	return errs
}

func (r *Runner) status(w io.Writer, format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// ExpandInputs returns args followed by the files matching the doublestar
// pattern (e.g. "inbox/**/*.pdf"), without duplicates.
func ExpandInputs(args []string, pattern string) ([]string, error) {
	paths := slices.Clone(args)
	if pattern == "" {
		return paths, nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	slices.Sort(matches)
	for _, m := range matches {
		if !slices.Contains(paths, m) {
			paths = append(paths, m)
		}
	}
	return paths, nil
}
