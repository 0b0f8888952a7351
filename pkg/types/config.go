// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// AIConfig holds shared settings for stages that call the hosted model API.
type AIConfig struct {
	// Model is the chat model used to structure or summarize text (e.g. "gpt-5-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the credential for the model provider. It is loaded from the
	// environment, a .env file, or the secrets directory; never from a flag.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible APIs, tests).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout is the HTTP timeout for a single API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxInputChars truncates source text before it is placed in the prompt.
	// Zero disables truncation.
	MaxInputChars int `json:"max_input_chars" yaml:"max_input_chars" mapstructure:"max_input_chars"`
}

// TranscriptionConfig holds settings for the audio transcription stage.
type TranscriptionConfig struct {
	// Model is the speech-to-text model (e.g. "gpt-4o-mini-transcribe").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Language is an optional ISO-639-1 hint passed to the model.
	Language string `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
}

// ConversionBackend identifies the PDF text extraction tool.
type ConversionBackend string

const (
	BackendNative     ConversionBackend = "native"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConversionConfig holds settings for the text extraction stage.
type ConversionConfig struct {
	// Backend selects the PDF extractor: native or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MarkitdownImage is the container image used by the markitdown backend.
	MarkitdownImage string `json:"markitdown_image" yaml:"markitdown_image" mapstructure:"markitdown_image"`
}

// StorageAdapter names a persistence backend.
type StorageAdapter string

const (
	StorageLocal StorageAdapter = "local"
	StorageS3    StorageAdapter = "s3"
)

// LocalStorageConfig configures the local filesystem adapter.
type LocalStorageConfig struct {
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`
}

// S3StorageConfig configures the S3-compatible adapter.
type S3StorageConfig struct {
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Region          string `json:"region" yaml:"region" mapstructure:"region"`
	Bucket          string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
	AccessKeyID     string `json:"-" yaml:"-" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"-" yaml:"-" mapstructure:"secret_access_key"`
}

// StorageConfig selects and configures where rendered notes are written.
type StorageConfig struct {
	Adapter StorageAdapter     `json:"adapter" yaml:"adapter" mapstructure:"adapter"`
	Local   LocalStorageConfig `json:"local" yaml:"local" mapstructure:"local"`
	S3      S3StorageConfig    `json:"s3" yaml:"s3" mapstructure:"s3"`
}

// ArchiveConfig holds settings for the notes history database.
type ArchiveConfig struct {
	// Enabled records every successful run in the archive.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir is the directory holding notes.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of rows returned by list and search.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Mode selects what the structuring model is asked to produce.
type Mode string

const (
	// ModeNotes asks for meeting notes with the four fixed section headings.
	ModeNotes Mode = "notes"
	// ModeSummary asks for a plain-language summary printed verbatim.
	ModeSummary Mode = "summary"
)

// OutputFormat selects how parsed notes are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

// Extension returns the file extension used for persisted output.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use text, yaml, or json", s)
	}
}

// PipelineConfig groups all stage configurations for a notes run.
type PipelineConfig struct {
	AI            AIConfig            `json:"ai" yaml:"ai" mapstructure:"ai"`
	Transcription TranscriptionConfig `json:"transcription" yaml:"transcription" mapstructure:"transcription"`
	Conversion    ConversionConfig    `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Storage       StorageConfig       `json:"storage" yaml:"storage" mapstructure:"storage"`
	Archive       ArchiveConfig       `json:"archive" yaml:"archive" mapstructure:"archive"`

	Mode   Mode         `json:"mode" yaml:"mode" mapstructure:"mode"`
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Output is an explicit destination name. Only valid for a single input.
	Output string `json:"output,omitempty" yaml:"output,omitempty" mapstructure:"output"`

	// Fallback substitutes "No information detected." for empty sections.
	Fallback bool `json:"fallback" yaml:"fallback" mapstructure:"fallback"`

	// SkipExisting leaves a source alone when its notes are already stored.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing" mapstructure:"skip_existing"`

	// Concurrency bounds how many files a batch processes at once (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// RequestsPerMinute throttles remote calls in a batch. Zero is unlimited.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// DefaultPipelineConfig returns the configuration used when no file,
// environment variable, or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AI: AIConfig{
			Model:         "gpt-5-mini",
			Timeout:       120 * time.Second,
			MaxRetries:    3,
			MaxInputChars: 4000,
		},
		Transcription: TranscriptionConfig{
			Model: "gpt-4o-mini-transcribe",
		},
		Conversion: ConversionConfig{
			Backend:         BackendNative,
			MarkitdownImage: "markitdown:latest",
		},
		Storage: StorageConfig{
			Adapter: StorageLocal,
			Local:   LocalStorageConfig{BasePath: "."},
		},
		Archive: ArchiveConfig{
			Enabled:    true,
			Dir:        ".notes-engine",
			MaxResults: 20,
		},
		Mode:        ModeNotes,
		Format:      FormatText,
		Fallback:    true,
		Concurrency: 1,
	}
}

// Validate checks the configuration before any collaborator is built.
// A missing credential is reported first so a run never reaches the network
// without one.
func (c PipelineConfig) Validate() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return fmt.Errorf("set OPENAI_API_KEY or .secrets/openai-api-key: %w", ErrMissingCredential)
	}
	switch c.Mode {
	case ModeNotes, ModeSummary:
	default:
		return fmt.Errorf("unknown mode %q: use notes or summary", c.Mode)
	}
	if _, err := ParseOutputFormat(string(c.Format)); err != nil {
		return err
	}
	switch c.Conversion.Backend {
	case BackendNative, BackendMarkitdown:
	default:
		return fmt.Errorf("unknown conversion backend %q: use native or markitdown", c.Conversion.Backend)
	}
	switch c.Storage.Adapter {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 adapter")
		}
	default:
		return fmt.Errorf("unknown storage adapter %q: use local or s3", c.Storage.Adapter)
	}
	if c.AI.MaxInputChars < 0 {
		return fmt.Errorf("ai.max_input_chars must not be negative")
	}
	return nil
}
