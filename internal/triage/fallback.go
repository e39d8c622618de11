package triage

// FallbackRedFlag is the fixed sentinel placed in red_flags whenever the
// automated pipeline could not produce a validated result. Downstream
// systems match on it; do not change the text.
const FallbackRedFlag = "AUTOMATED ANALYSIS FAILED - result produced by safety fallback"

// fallbackActions are the fixed suggested actions on the failure path.
var fallbackActions = []string{
	"Perform manual clinical assessment immediately",
	"Inspect service logs for the underlying failure",
}

// Fallback converts any pipeline failure into a fixed, conservative
// Result. This is the single place where fail-safe is enforced: the
// original error never reaches the caller, only its message, carried in
// the reasoning field for operator diagnosis (not clinical use).
func Fallback(err error) *Result {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	return &Result{
		TriageLevel:      LevelUrgent,
		Confidence:       0.0,
		RedFlags:         []string{FallbackRedFlag},
		SuggestedActions: append([]string(nil), fallbackActions...),
		Reasoning:        msg,
		Timestamp:        now(),
	}
}
