// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration and shared values for the notes pipeline.
package types

import "errors"

var (
	// ErrMissingCredential is returned when no model provider credential is
	// configured. It is fatal and must stop a run before any remote call.
	ErrMissingCredential = errors.New("model provider credential not configured")

	// ErrEmptyInput is returned when extracted or transcribed text is empty
	// or whitespace-only.
	ErrEmptyInput = errors.New("source contains no readable text")

	// ErrUnsupportedSource is returned when a file is neither a PDF, an audio
	// recording, nor plain text.
	ErrUnsupportedSource = errors.New("unsupported source type")
)

// SourceKind classifies an input file by how its text is obtained.
type SourceKind string

const (
	SourcePDF   SourceKind = "pdf"
	SourceAudio SourceKind = "audio"
	SourceText  SourceKind = "text"
)
