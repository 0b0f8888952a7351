// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the model provider credential. Credentials come from
// the process environment, an optional .env file, or a directory of
// plain-text files where each filename is a key and the trimmed contents are
// the value.
//
// Supported key files: openai-api-key, aws-access-key-id, aws-secret-access-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// Key names understood by Resolve and the CLI.
const (
	OpenAIAPIKey       = "openai-api-key"
	AWSAccessKeyID     = "aws-access-key-id"
	AWSSecretAccessKey = "aws-secret-access-key"
)

// envNames maps a secret key to the environment variables checked for it,
// in priority order.
var envNames = map[string][]string{
	OpenAIAPIKey:       {"NOTES_ENGINE_AI_API_KEY", "OPENAI_API_KEY"},
	AWSAccessKeyID:     {"AWS_ACCESS_KEY_ID"},
	AWSSecretAccessKey: {"AWS_SECRET_ACCESS_KEY"},
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left untouched. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Resolve returns the value for key. The environment wins over the secrets
// directory so a one-off override does not require editing files. It
// returns "" when neither source has a value.
func Resolve(loaded map[string]string, key string) string {
	for _, name := range envNames[key] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return loaded[key]
}
