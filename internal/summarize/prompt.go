// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"text/template"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/notes-engine/internal/httputil"
	"github.com/pdiddy/notes-engine/pkg/types"
)

// notesPromptTmpl asks for meeting notes under the four fixed headings.
var notesPromptTmpl = template.Must(template.New("notes").Parse(`You are a professional meeting assistant.

IMPORTANT:
Return output in EXACT format below.

SUMMARY:
- 

KEY POINTS:
- 

DECISIONS:
- 

ACTION ITEMS:
- 

Transcript:
{{.Text}}
`))

// summaryPromptTmpl asks for a plain-language summary.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Summarize the following text in simple and clear language:

{{.Text}}`))

// RenderPrompt executes the prompt template for mode with text.
func RenderPrompt(mode types.Mode, text string) (string, error) {
	var tmpl *template.Template
	switch mode {
	case types.ModeNotes, "":
		tmpl = notesPromptTmpl
	case types.ModeSummary:
		tmpl = summaryPromptTmpl
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OpenAIBackend calls the chat completions API of OpenAI or a compatible
// provider.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from explicit configuration. The HTTP
// client retries rate-limited calls.
func NewOpenAIBackend(cfg types.AIConfig, logger *slog.Logger) *OpenAIBackend {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = httputil.NewClient(cfg.Timeout, cfg.MaxRetries, logger)
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Complete sends prompt as a single user message and returns the first
// choice's text.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		err = fmt.Errorf("calling chat completions: %w", err)
		if isClientError(err) {
			return "", &PermanentError{Err: err}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// isClientError reports whether err is a 4xx API error other than 429.
func isClientError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
		apiErr.HTTPStatusCode != http.StatusTooManyRequests
}
