package claude

import (
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestExtractText(t *testing.T) {
	t.Parallel()

	msg := &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: `{"triage_level": `},
			{Type: "tool_use"},
			{Type: "text", Text: `"ROUTINE"}`},
		},
	}

	if got, want := extractText(msg), `{"triage_level": "ROUTINE"}`; got != want {
		t.Errorf("extractText = %q, want %q", got, want)
	}
}

func TestExtractText_Empty(t *testing.T) {
	t.Parallel()

	if got := extractText(&anthropic.Message{}); got != "" {
		t.Errorf("extractText = %q, want empty", got)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	c := New("api-key", "claude-sonnet-4-20250514", 30*time.Second)
	if c.Model() != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", c.Model())
	}
}
