// Package claude implements triage.Provider for the Anthropic Messages
// API. Unlike Gemini there is no enforced JSON response type, so the
// system prompt demands a bare JSON object and the normalizer strips
// any stray code fences.
package claude

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/acuity/internal/triage"
)

const (
	maxTokens   = 1024
	temperature = 0.1
	topK        = 40
	topP        = 0.95
)

const systemPrompt = `You are a clinical triage assistant. Reply with a single JSON object only - no prose, no markdown fences.`

// Client implements triage.Provider via the Anthropic SDK.
type Client struct {
	client anthropic.Client
	model  string
}

// New creates a new Claude client with the given API key and model name.
func New(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(timeout),
		),
		model: model,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends the prompt and returns the concatenated text content of
// the reply. API and transport failures come back as
// *triage.TransportError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		TopK:        anthropic.Int(topK),
		TopP:        anthropic.Float(topP),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", &triage.TransportError{Status: apierr.StatusCode, Err: err}
		}
		return "", &triage.TransportError{Err: err}
	}

	return extractText(msg), nil
}

// extractText concatenates the text blocks of a reply.
func extractText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
