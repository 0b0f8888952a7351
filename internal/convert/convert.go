// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts plain text from source documents with pluggable
// backends and classifies input files by content.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/notes-engine/internal/container"
	"github.com/pdiddy/notes-engine/internal/transcribe"
	"github.com/pdiddy/notes-engine/pkg/types"
)

// Converter transforms a document into plain text. Different backends
// (native PDF text layer, markitdown, plain text) implement this interface.
// An empty string with a nil error means nothing was extractable; callers
// enforce the empty-input check.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".text": true,
}

// Detect classifies a file as a PDF, an audio recording, or plain text.
// Content sniffing wins; the extension is consulted only when the content
// is ambiguous (for example an empty file or a generic octet stream).
func Detect(path string) (types.SourceKind, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting type of %s: %w", path, err)
	}
	if kind, ok := kindFromMIME(m); ok {
		return kind, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return types.SourcePDF, nil
	case transcribe.IsAudioFile(path):
		return types.SourceAudio, nil
	case textExtensions[ext]:
		return types.SourceText, nil
	}
	return "", fmt.Errorf("%s (%s): %w", path, m.String(), types.ErrUnsupportedSource)
}

func kindFromMIME(m *mimetype.MIME) (types.SourceKind, bool) {
	for mt := m; mt != nil; mt = mt.Parent() {
		switch {
		case mt.Is("application/pdf"):
			return types.SourcePDF, true
		case strings.HasPrefix(mt.String(), "audio/"), mt.Is("video/mp4"), mt.Is("video/webm"):
			return types.SourceAudio, true
		case mt.Is("text/plain"):
			return types.SourceText, true
		}
	}
	return "", false
}

// New returns the PDF converter for the configured backend. The markitdown
// backend detects a container runtime and verifies the image up front.
func New(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendNative:
		return PDFConverter{}, nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(rt, cfg.MarkitdownImage)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}
