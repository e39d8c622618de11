// Package gemini implements triage.Provider for the Gemini
// generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// DefaultEndpoint is the production API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Generation parameters are fixed: low temperature for repeatable
// classification, JSON response type so replies parse without fences.
const (
	temperature     = 0.1
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 1024
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
}

// New creates a new Gemini client. endpoint falls back to
// DefaultEndpoint when empty. maxRetries bounds transport retries per
// call; 0 disables retrying.
func New(endpoint, apiKey, model string, timeout time.Duration, maxRetries int) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the generated reply text from
// the first candidate. Transport failures, timeouts, and non-2xx
// responses come back as *triage.TransportError after bounded retries;
// only connection errors, 429 and 5xx are retried.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			TopK:             topK,
			TopP:             topP,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reply, err := backoff.Retry(ctx, func() (string, error) {
		return c.generateOnce(ctx, body)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
	)
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) generateOnce(ctx context.Context, body []byte) (string, error) {
	u := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &triage.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &triage.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &triage.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("gemini api error: %s", string(respBody)),
		}
		if !retryable(resp.StatusCode) {
			return "", backoff.Permanent(terr)
		}
		return "", terr
	}

	var out response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", backoff.Permanent(&triage.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unmarshal response: %w", err),
		})
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", backoff.Permanent(&triage.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("response contains no candidates"),
		})
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// retryable reports whether a status code is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
