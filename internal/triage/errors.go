package triage

import (
	"fmt"
	"unicode/utf8"
)

// TransportError means the reasoning endpoint could not be reached or
// returned a non-success response. Status is the HTTP status code, or 0
// when the failure happened below HTTP (dial, timeout).
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("reasoning endpoint returned %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("reasoning endpoint unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedReplyError means the reply text could not be normalized into
// the result schema. Snippet carries a bounded prefix of the offending
// reply for operator diagnosis.
type MalformedReplyError struct {
	Err     error
	Snippet string
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed reasoning reply: %v (reply: %q)", e.Err, e.Snippet)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

// snippet bounds s for inclusion in error messages and logs. The cut
// backs up to a rune boundary so the snippet stays valid UTF-8.
func snippet(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
