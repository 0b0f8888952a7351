// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a source document through extraction or
// transcription, the structuring model, the section parser, and
// persistence.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/time/rate"

	"github.com/pdiddy/notes-engine/internal/archive"
	"github.com/pdiddy/notes-engine/internal/convert"
	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/internal/storage"
	"github.com/pdiddy/notes-engine/internal/summarize"
	"github.com/pdiddy/notes-engine/internal/transcribe"
	"github.com/pdiddy/notes-engine/pkg/types"
)

// SummaryBanner precedes summary-mode output on the console.
const SummaryBanner = "\n========== AI GENERATED SUMMARY ==========\n"

// ErrDuplicateDestination is returned for a batch input whose notes would be
// stored where an earlier input's notes go.
var ErrDuplicateDestination = errors.New("destination already used by another input")

// Archiver records a finished run.
type Archiver interface {
	Save(ctx context.Context, rec archive.Record) (string, error)
}

// Deps holds the collaborators of a Runner. Nil fields are built from the
// configuration by New; tests inject fakes.
type Deps struct {
	Detect      func(path string) (types.SourceKind, error)
	PDF         convert.Converter
	Text        convert.Converter
	Transcriber transcribe.Transcriber
	Backend     summarize.Backend
	Storage     storage.Adapter
	Archive     Archiver

	// Out receives rendered notes or the summary banner and text.
	Out io.Writer

	Logger *slog.Logger
	Now    func() time.Time
}

// Result describes one processed source.
type Result struct {
	Source      string
	Kind        types.SourceKind
	Destination string
	Location    string
	ArchiveID   string

	// Skipped is set when SkipExisting found notes already stored at
	// Destination; nothing else ran.
	Skipped bool

	Reply       string
	Notes       notes.Notes
}

// Runner processes source files for one configuration.
type Runner struct {
	cfg        types.PipelineConfig
	deps       Deps
	summarizer *summarize.Summarizer
	parser     notes.Parser
	limiter    *rate.Limiter
	outMu      sync.Mutex
	closers    []io.Closer
}

// New validates cfg and builds a Runner. A missing credential fails with
// types.ErrMissingCredential before any collaborator is constructed.
func New(ctx context.Context, cfg types.PipelineConfig, deps Deps) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, parser: notes.Parser{Fallback: cfg.Fallback}}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Detect == nil {
		deps.Detect = convert.Detect
	}
	if deps.Text == nil {
		deps.Text = convert.TextConverter{}
	}
	if deps.PDF == nil {
		c, err := convert.New(cfg.Conversion)
		if err != nil {
			return nil, fmt.Errorf("building %s converter: %w", cfg.Conversion.Backend, err)
		}
		deps.PDF = c
	}
	if deps.Transcriber == nil {
		deps.Transcriber = transcribe.NewOpenAITranscriber(cfg.AI, cfg.Transcription, deps.Logger)
	}
	if deps.Backend == nil {
		deps.Backend = summarize.NewOpenAIBackend(cfg.AI, deps.Logger)
	}
	if deps.Storage == nil {
		a, err := storage.NewAdapter(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("building %s storage: %w", cfg.Storage.Adapter, err)
		}
		deps.Storage = a
		r.closers = append(r.closers, a)
	}
	if deps.Archive == nil && cfg.Archive.Enabled {
		s, err := archive.Open(cfg.Archive)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		deps.Archive = s
		r.closers = append(r.closers, s)
	}
	if cfg.RequestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	r.deps = deps
	r.summarizer = summarize.New(deps.Backend, cfg.Mode, cfg.AI, deps.Logger)
	return r, nil
}

// Close releases the storage adapter and archive built by New.
func (r *Runner) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// Run processes one source file: obtain its text, structure it with the
// model, print and persist the result, and archive the run.
func (r *Runner) Run(ctx context.Context, path string) (Result, error) {
	res := Result{Source: path}
	log := r.deps.Logger.With("source", path)

	kind, err := r.deps.Detect(path)
	if err != nil {
		return res, err
	}
	res.Kind = kind
	log.Debug("detected source", "kind", kind)

	res.Destination = Destination(path, r.cfg)
	if r.cfg.SkipExisting {
		exists, err := r.deps.Storage.Exists(ctx, res.Destination)
		if err != nil {
			return res, fmt.Errorf("checking existing notes for %s: %w", path, err)
		}
		if exists {
			res.Skipped = true
			res.Location = r.deps.Storage.Location(res.Destination)
			log.Info("notes already stored, skipping", "location", res.Location)
			return res, nil
		}
	}

	text, err := r.sourceText(ctx, kind, path)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(text) == "" {
		return res, fmt.Errorf("%s: %w", path, types.ErrEmptyInput)
	}

	if err := r.wait(ctx); err != nil {
		return res, err
	}
	reply, err := r.summarizer.Structure(ctx, text)
	if err != nil {
		return res, fmt.Errorf("structuring %s: %w", path, err)
	}
	res.Reply = reply

	var console, persisted bytes.Buffer
	if r.cfg.Mode == types.ModeSummary {
		fmt.Fprintf(&console, "%s\n%s\n", SummaryBanner, reply)
		if err := encodeSummary(&persisted, path, reply, r.cfg.Format); err != nil {
			return res, err
		}
	} else {
		res.Notes = r.parser.Parse(reply)
		if err := notes.Render(&console, res.Notes); err != nil {
			return res, err
		}
		if err := notes.Encode(&persisted, res.Notes, r.cfg.Format); err != nil {
			return res, err
		}
	}
	r.writeOut(console.Bytes())

	if err := r.deps.Storage.Put(ctx, res.Destination, &persisted); err != nil {
		return res, fmt.Errorf("saving notes for %s: %w", path, err)
	}
	res.Location = r.deps.Storage.Location(res.Destination)
	log.Info("saved notes", "location", res.Location)

	if r.deps.Archive != nil {
		id, err := r.deps.Archive.Save(ctx, archive.Record{
			Source:      path,
			Mode:        r.cfg.Mode,
			Destination: res.Location,
			CreatedAt:   r.deps.Now(),
			Notes:       res.Notes,
			Summary:     summaryText(r.cfg.Mode, reply),
		})
		if err != nil {
			return res, fmt.Errorf("archiving %s: %w", path, err)
		}
		res.ArchiveID = id
	}
	return res, nil
}

func (r *Runner) sourceText(ctx context.Context, kind types.SourceKind, path string) (string, error) {
	switch kind {
	case types.SourcePDF:
		text, err := r.deps.PDF.Convert(ctx, path)
		if err != nil {
			return "", fmt.Errorf("extracting text from %s: %w", path, err)
		}
		return text, nil
	case types.SourceAudio:
		if err := r.wait(ctx); err != nil {
			return "", err
		}
		text, err := r.deps.Transcriber.Transcribe(ctx, path)
		if err != nil {
			return "", fmt.Errorf("transcribing %s: %w", path, err)
		}
		return text, nil
	case types.SourceText:
		return r.deps.Text.Convert(ctx, path)
	default:
		return "", fmt.Errorf("%s (%s): %w", path, kind, types.ErrUnsupportedSource)
	}
}

// wait blocks until the remote call rate limit admits another request.
func (r *Runner) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

func (r *Runner) writeOut(p []byte) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = r.deps.Out.Write(p)
}

func summaryText(mode types.Mode, reply string) string {
	if mode == types.ModeSummary {
		return reply
	}
	return ""
}

// Destination names the persisted file for source: cfg.Output when set,
// otherwise the source path with its extension replaced by a -notes or
// -summary suffix and the extension of the output format. The source's
// directory is kept, so same-named inputs in different folders do not
// collide and local notes land next to their source.
func Destination(source string, cfg types.PipelineConfig) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffix := "-notes"
	if cfg.Mode == types.ModeSummary {
		suffix = "-summary"
	}
	return filepath.Join(filepath.Dir(source), stem+suffix+cfg.Format.Extension())
}

// encodeSummary writes a summary-mode reply in the requested format.
func encodeSummary(w io.Writer, source, reply string, format types.OutputFormat) error {
	doc := struct {
		Source  string `json:"source" yaml:"source"`
		Summary string `json:"summary" yaml:"summary"`
	}{Source: filepath.Base(source), Summary: reply}

	switch format {
	case types.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case types.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, strings.TrimRight(reply, "\n")+"\n")
		return err
	}
}
