package triage

import "context"

// Provider is the interface for any reasoning backend. Generate issues
// one synchronous call with the given prompt and returns the raw reply
// text. The reply is untrusted; the normalizer owns validation.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Model identifies the underlying model for records and metrics.
	Model() string
}
