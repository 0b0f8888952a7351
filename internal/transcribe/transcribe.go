// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcribe converts audio recordings to text through a hosted
// speech-to-text model.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/notes-engine/internal/httputil"
	"github.com/pdiddy/notes-engine/pkg/types"
)

const defaultModel = "gpt-4o-mini-transcribe"

// ErrEmptyAudio is returned for zero-length audio files. The file is rejected
// before it is uploaded.
var ErrEmptyAudio = errors.New("audio file is empty")

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// SupportedExtensions lists the audio containers accepted by the API.
func SupportedExtensions() []string {
	return []string{".flac", ".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".oga", ".ogg", ".wav", ".webm"}
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return slices.Contains(SupportedExtensions(), strings.ToLower(filepath.Ext(path)))
}

// OpenAITranscriber uploads audio to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *slog.Logger
}

// NewOpenAITranscriber builds a transcriber from explicit configuration. The
// credential and endpoint come from the AI section so both remote
// collaborators share one provider account.
func NewOpenAITranscriber(ai types.AIConfig, cfg types.TranscriptionConfig, logger *slog.Logger) *OpenAITranscriber {
	oc := openai.DefaultConfig(ai.APIKey)
	if ai.BaseURL != "" {
		oc.BaseURL = ai.BaseURL
	}
	oc.HTTPClient = httputil.NewClient(ai.Timeout, ai.MaxRetries, logger)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &OpenAITranscriber{
		client:   openai.NewClientWithConfig(oc),
		model:    model,
		language: strings.TrimSpace(cfg.Language),
		logger:   logger,
	}
}

// Transcribe uploads the file at path and returns the transcript text. The
// transcript may be empty; callers decide whether that is an error.
func (o *OpenAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat audio %s: %w", path, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyAudio)
	}

	if o.logger != nil {
		o.logger.Debug("transcribing audio", "path", path, "bytes", info.Size(), "model", o.model)
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: path,
		Language: o.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", path, err)
	}
	return strings.TrimSpace(resp.Text), nil
}
