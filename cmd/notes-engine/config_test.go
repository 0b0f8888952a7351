// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/internal/secrets"
	"github.com/pdiddy/notes-engine/pkg/types"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "NOTES_ENGINE_AI_API_KEY", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearCredentialEnv(t)
	v := viper.New()
	configureViper(v)

	cfg, err := loadConfig(v, nil)
	require.NoError(t, err)

	want := types.DefaultPipelineConfig()
	assert.Equal(t, want, cfg)
	assert.ErrorIs(t, cfg.Validate(), types.ErrMissingCredential)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("NOTES_ENGINE_AI_MODEL", "gpt-4.1-mini")
	t.Setenv("NOTES_ENGINE_AI_TIMEOUT", "30s")
	t.Setenv("NOTES_ENGINE_AI_MAX_INPUT_CHARS", "0")
	t.Setenv("NOTES_ENGINE_STORAGE_ADAPTER", "s3")
	t.Setenv("NOTES_ENGINE_STORAGE_S3_BUCKET", "meeting-notes")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	v := viper.New()
	configureViper(v)
	cfg, err := loadConfig(v, map[string]string{secrets.OpenAIAPIKey: "sk-file"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.AI.Model)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Zero(t, cfg.AI.MaxInputChars)
	assert.Equal(t, types.StorageS3, cfg.Storage.Adapter)
	assert.Equal(t, "meeting-notes", cfg.Storage.S3.Bucket)
	assert.Equal(t, "sk-env", cfg.AI.APIKey, "environment wins over the secrets directory")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_SecretsAndFile(t *testing.T) {
	clearCredentialEnv(t)
	path := filepath.Join(t.TempDir(), "notes-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  model: gpt-5
  max_retries: 5
transcription:
  language: de
archive:
  enabled: false
format: yaml
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	configureViper(v)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v, map[string]string{
		secrets.OpenAIAPIKey:       "sk-file",
		secrets.AWSAccessKeyID:     "AKIA",
		secrets.AWSSecretAccessKey: "shh",
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-5", cfg.AI.Model)
	assert.Equal(t, 5, cfg.AI.MaxRetries)
	assert.Equal(t, "de", cfg.Transcription.Language)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, types.FormatYAML, cfg.Format)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, "AKIA", cfg.Storage.S3.AccessKeyID)
	assert.Equal(t, "shh", cfg.Storage.S3.SecretAccessKey)
}

func TestRunParse(t *testing.T) {
	in := "Preamble from the model.\nsummary: quarterly review\nThe team reviewed Q3.\n\nACTION ITEMS\nAlice drafts the plan.\n"

	tests := []struct {
		name     string
		format   types.OutputFormat
		fallback bool
		check    func(t *testing.T, out string)
	}{
		{
			name:     "text with fallback",
			format:   types.FormatText,
			fallback: true,
			check: func(t *testing.T, out string) {
				want := notes.Parse(in).String()
				assert.Equal(t, want, out)
				assert.Contains(t, out, "DECISIONS\n"+strings.Repeat("-", 40)+"\n"+notes.NoInformation+"\n")
			},
		},
		{
			name:   "json without fallback",
			format: types.FormatJSON,
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, `"DECISIONS": ""`)
				assert.Contains(t, out, `"ACTION ITEMS": "Alice drafts the plan.\n"`)
				assert.NotContains(t, out, "Preamble")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runParse(strings.NewReader(in), &out, tt.format, tt.fallback))
			tt.check(t, out.String())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "json", true).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&buf, "text", false).Debug("hidden")
	assert.Empty(t, buf.String())
}
