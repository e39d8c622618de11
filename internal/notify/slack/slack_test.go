package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/linnemanlabs/acuity/internal/triage"
)

func fallbackRecord() *triage.Record {
	return &triage.Record{
		ID:          "rec-1",
		Fingerprint: "fp-1",
		Result: triage.Result{
			TriageLevel:      triage.LevelUrgent,
			Confidence:       0.0,
			RedFlags:         []string{triage.FallbackRedFlag},
			SuggestedActions: []string{"Manual clinical assessment required"},
			Reasoning:        "transport error: gemini api error",
			Timestamp:        "2026-08-23T12:00:00Z",
		},
		Fallback:  true,
		Model:     "gemini-2.0-flash",
		Duration:  2.4,
		CreatedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotify_NoWebhookConfigured(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Notify(context.Background(), fallbackRecord()); err != nil {
		t.Errorf("Notify with empty URL = %v, want nil", err)
	}
}

func TestNotify_PostsMessage(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Notify(context.Background(), fallbackRecord()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := payload["blocks"].([]any)
	if !ok || len(blocks) == 0 {
		t.Fatalf("payload missing blocks: %v", payload)
	}

	raw, _ := json.Marshal(payload)
	body := string(raw)
	if !strings.Contains(body, "Automated Analysis Failed") {
		t.Error("fallback header missing")
	}
	if !strings.Contains(body, "URGENT") {
		t.Error("triage level missing")
	}
	if !strings.Contains(body, "Failure detail") {
		t.Error("failure detail label missing")
	}
	if !strings.Contains(body, "rec-1") {
		t.Error("record ID missing")
	}
}

func TestNotify_WebhookError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), fallbackRecord())
	if err == nil {
		t.Fatal("expected error for non-2xx webhook response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestBuildMessage_SuccessRecord(t *testing.T) {
	t.Parallel()

	rec := fallbackRecord()
	rec.Fallback = false
	rec.Result.TriageLevel = triage.LevelSemiUrgent
	rec.Result.Reasoning = "stable vitals, follow up within days"

	raw, _ := json.Marshal(buildMessage(rec))
	body := string(raw)

	if !strings.Contains(body, "Triage Result") {
		t.Error("expected the non-fallback header")
	}
	if strings.Contains(body, "Automated Analysis Failed") {
		t.Error("fallback header on a success record")
	}
	if !strings.Contains(body, "*Reasoning*") {
		t.Error("expected the reasoning label")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", maxReasoningLen+100)
	got := truncate(long, maxReasoningLen)
	if len(got) != maxReasoningLen {
		t.Errorf("len = %d, want %d", len(got), maxReasoningLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}
	if truncate("short", maxReasoningLen) != "short" {
		t.Error("short strings must pass through")
	}

	// Cut landing inside a multi-byte rune must stay valid UTF-8.
	multibyte := truncate(strings.Repeat("ü", maxReasoningLen), maxReasoningLen)
	if !utf8.ValidString(multibyte) {
		t.Errorf("truncated string is not valid UTF-8: %q", multibyte[:12])
	}
	if len(multibyte) > maxReasoningLen {
		t.Errorf("len = %d, want <= %d", len(multibyte), maxReasoningLen)
	}
}

func TestLevelEmoji(t *testing.T) {
	t.Parallel()

	if levelEmoji(triage.LevelEmergent) != levelEmoji(triage.LevelUrgent) {
		t.Error("EMERGENT and URGENT should share the red marker")
	}
	if levelEmoji(triage.LevelRoutine) == levelEmoji(triage.LevelUrgent) {
		t.Error("ROUTINE should not share the urgent marker")
	}
}
