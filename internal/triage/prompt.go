package triage

import (
	"fmt"
	"strings"
)

// buildPrompt renders the clinical note and task instructions into a
// single prompt string. The note is forwarded verbatim, garbage in and
// all; validation happens on the reply, not the input. Pure function.
func buildPrompt(note string) string {
	var levels strings.Builder
	for _, l := range Levels {
		fmt.Fprintf(&levels, "- %s: %s\n", l, LevelMeanings[l])
	}

	return fmt.Sprintf(`You are a clinical triage assistant. Analyze the clinical note below and assign a triage level.

Permitted triage levels:
%s
Clinical note:
---
%s
---

Respond with a single JSON object and nothing else, using exactly this schema:
{
  "triage_level": "EMERGENT" | "URGENT" | "SEMI_URGENT" | "ROUTINE",
  "confidence": <number between 0.0 and 1.0>,
  "red_flags": [<string>, ...],
  "suggested_actions": [<string>, ...],
  "reasoning": <string>
}

If you are uncertain between two levels, choose the more urgent one. Err on the side of caution.`,
		levels.String(), note)
}
