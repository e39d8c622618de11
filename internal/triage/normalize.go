package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// rawReply mirrors the reply schema with optionality preserved. Pointer
// and json.Number fields distinguish absent from zero; a field present
// with the wrong JSON type fails the unmarshal and escalates as a
// malformed reply.
type rawReply struct {
	TriageLevel      *string      `json:"triage_level"`
	Confidence       *json.Number `json:"confidence"`
	RedFlags         []string     `json:"red_flags"`
	SuggestedActions []string     `json:"suggested_actions"`
	Reasoning        *string      `json:"reasoning"`
}

// Normalize parses raw reply text and validates it into a canonical
// Result. Missing optional fields get defaults: triage_level ROUTINE,
// confidence 0.5, empty flag/action lists, empty reasoning. Only a
// reply that cannot be reconciled with the schema at all escalates,
// as *MalformedReplyError; a present-but-unknown triage_level counts
// as such a violation and takes the same path.
func Normalize(reply string) (*Result, error) {
	text := stripFences(strings.TrimSpace(reply))

	// Unmarshal alone is not enough of a gate: a bare `null` is valid
	// JSON and unmarshals into a struct as a no-op, which would let a
	// degenerate non-answer land on the all-defaults (least urgent)
	// result. Only an object is an answer.
	if text == "" || text[0] != '{' {
		return nil, &MalformedReplyError{
			Err:     errors.New("reply is not a JSON object"),
			Snippet: snippet(text),
		}
	}

	var raw rawReply
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &MalformedReplyError{Err: err, Snippet: snippet(text)}
	}

	level := LevelRoutine
	if raw.TriageLevel != nil {
		parsed, ok := ParseLevel(*raw.TriageLevel)
		if !ok {
			return nil, &MalformedReplyError{
				Err:     fmt.Errorf("unknown triage_level %q", *raw.TriageLevel),
				Snippet: snippet(text),
			}
		}
		level = parsed
	}

	confidence := 0.5
	if raw.Confidence != nil {
		f, err := raw.Confidence.Float64()
		if err != nil {
			return nil, &MalformedReplyError{Err: fmt.Errorf("confidence: %w", err), Snippet: snippet(text)}
		}
		confidence = clamp(f, 0, 1)
	}

	redFlags := raw.RedFlags
	if redFlags == nil {
		redFlags = []string{}
	}
	actions := raw.SuggestedActions
	if actions == nil {
		actions = []string{}
	}

	var reasoning string
	if raw.Reasoning != nil {
		reasoning = *raw.Reasoning
	}

	return &Result{
		TriageLevel:      level,
		Confidence:       confidence,
		RedFlags:         redFlags,
		SuggestedActions: actions,
		Reasoning:        reasoning,
		Timestamp:        now(),
	}, nil
}

// stripFences removes a surrounding markdown code fence. Models without
// an enforced JSON response type like to wrap their output in one.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
