// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notes-engine/internal/secrets"
	"github.com/pdiddy/notes-engine/pkg/types"
)

const envPrefix = "NOTES_ENGINE"

// configureViper registers the environment mapping and every default so
// that NOTES_ENGINE_AI_MODEL and friends are visible to Unmarshal.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := types.DefaultPipelineConfig()
	defaults := map[string]any{
		"ai.model":                     d.AI.Model,
		"ai.api_key":                   "",
		"ai.base_url":                  "",
		"ai.timeout":                   d.AI.Timeout,
		"ai.max_retries":               d.AI.MaxRetries,
		"ai.max_input_chars":           d.AI.MaxInputChars,
		"transcription.model":          d.Transcription.Model,
		"transcription.language":       "",
		"conversion.backend":           string(d.Conversion.Backend),
		"conversion.markitdown_image":  d.Conversion.MarkitdownImage,
		"storage.adapter":              string(d.Storage.Adapter),
		"storage.local.base_path":      d.Storage.Local.BasePath,
		"storage.s3.endpoint":          "",
		"storage.s3.region":            "",
		"storage.s3.bucket":            "",
		"storage.s3.prefix":            "",
		"storage.s3.access_key_id":     "",
		"storage.s3.secret_access_key": "",
		"archive.enabled":              d.Archive.Enabled,
		"archive.dir":                  d.Archive.Dir,
		"archive.max_results":          d.Archive.MaxResults,
		"mode":                         string(d.Mode),
		"format":                       string(d.Format),
		"output":                       "",
		"fallback":                     d.Fallback,
		"skip_existing":                d.SkipExisting,
		"concurrency":                  d.Concurrency,
		"requests_per_minute":          d.RequestsPerMinute,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig unmarshals the layered configuration and resolves credentials.
// Environment variables and the secrets directory take precedence over a
// credential written in the config file.
func loadConfig(v *viper.Viper, loaded map[string]string) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	if key := secrets.Resolve(loaded, secrets.OpenAIAPIKey); key != "" {
		cfg.AI.APIKey = key
	}
	if id := secrets.Resolve(loaded, secrets.AWSAccessKeyID); id != "" && cfg.Storage.S3.AccessKeyID == "" {
		cfg.Storage.S3.AccessKeyID = id
	}
	if secret := secrets.Resolve(loaded, secrets.AWSSecretAccessKey); secret != "" && cfg.Storage.S3.SecretAccessKey == "" {
		cfg.Storage.S3.SecretAccessKey = secret
	}
	return cfg, nil
}

// addPipelineFlags registers the flags shared by notes, summarize and watch.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "destination file name (single input only)")
	cmd.Flags().String("format", "", "persisted output format: text, yaml, or json")
	cmd.Flags().String("model", "", "model used to structure the text")
	cmd.Flags().String("backend", "", "PDF extraction backend: native or markitdown")
	cmd.Flags().Int("max-chars", 0, "truncate source text to this many characters before prompting")
	cmd.Flags().Bool("no-fallback", false, `leave empty sections empty instead of "No information detected."`)
	cmd.Flags().Bool("no-archive", false, "do not record the run in the history database")
	cmd.Flags().Bool("skip-existing", false, "skip sources whose notes are already stored")
}

// pipelineConfig builds the run configuration for mode from viper and the
// command's flags. Only flags the user set override the layered config.
func pipelineConfig(cmd *cobra.Command, mode types.Mode) (types.PipelineConfig, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		s, _ := flags.GetString("format")
		f, err := types.ParseOutputFormat(s)
		if err != nil {
			return cfg, err
		}
		cfg.Format = f
	}
	if flags.Changed("model") {
		cfg.AI.Model, _ = flags.GetString("model")
	}
	if flags.Changed("backend") {
		s, _ := flags.GetString("backend")
		cfg.Conversion.Backend = types.ConversionBackend(s)
	}
	if flags.Changed("max-chars") {
		cfg.AI.MaxInputChars, _ = flags.GetInt("max-chars")
	}
	if flags.Changed("no-fallback") {
		noFallback, _ := flags.GetBool("no-fallback")
		cfg.Fallback = !noFallback
	}
	if flags.Changed("no-archive") {
		noArchive, _ := flags.GetBool("no-archive")
		cfg.Archive.Enabled = !noArchive
	}
	if flags.Changed("skip-existing") {
		cfg.SkipExisting, _ = flags.GetBool("skip-existing")
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Lookup("rpm") != nil && flags.Changed("rpm") {
		cfg.RequestsPerMinute, _ = flags.GetInt("rpm")
	}
	return cfg, nil
}
