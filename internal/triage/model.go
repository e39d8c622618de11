package triage

import "time"

// Level is the urgency category assigned to a clinical case.
type Level string

const (
	// LevelEmergent means immediate intervention required
	LevelEmergent Level = "EMERGENT"

	// LevelUrgent means assessment needed within the hour
	LevelUrgent Level = "URGENT"

	// LevelSemiUrgent means assessment needed within a few hours
	LevelSemiUrgent Level = "SEMI_URGENT"

	// LevelRoutine means no acute risk identified, standard scheduling
	LevelRoutine Level = "ROUTINE"
)

// Levels lists the permitted triage levels in decreasing urgency.
var Levels = []Level{LevelEmergent, LevelUrgent, LevelSemiUrgent, LevelRoutine}

// LevelMeanings maps each level to a human-readable meaning. Read-only,
// used by display surfaces; its key set is the validation contract for
// the triage_level field.
var LevelMeanings = map[Level]string{
	LevelEmergent:   "Immediate intervention required - potential threat to life or limb",
	LevelUrgent:     "Clinical assessment required within the hour",
	LevelSemiUrgent: "Clinical assessment required within a few hours",
	LevelRoutine:    "No acute risk identified - standard scheduling",
}

// ParseLevel returns the Level for s if it is one of the four permitted values.
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	_, ok := LevelMeanings[l]
	return l, ok
}

// Valid reports whether l is one of the four permitted levels.
func (l Level) Valid() bool {
	_, ok := LevelMeanings[l]
	return ok
}

// Result is the canonical outcome of analyzing one clinical note. Field
// names and order are a compatibility contract for downstream consumers;
// do not reorder or rename. A Result is constructed exactly once per
// analyzed note, by the normalizer or by the safety fallback, and is
// never mutated afterwards.
type Result struct {
	TriageLevel      Level    `json:"triage_level"`
	Confidence       float64  `json:"confidence"`
	RedFlags         []string `json:"red_flags"`
	SuggestedActions []string `json:"suggested_actions"`
	Reasoning        string   `json:"reasoning"`
	Timestamp        string   `json:"timestamp"`
}

// Record wraps a Result with service-level metadata for persistence and
// retrieval. The note text itself is never stored; Fingerprint is a
// SHA-256 hash of it.
type Record struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Result      Result    `json:"result"`
	Fallback    bool      `json:"fallback"`
	Model       string    `json:"model"`
	Duration    float64   `json:"duration_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// now returns the current instant formatted for the timestamp field.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
