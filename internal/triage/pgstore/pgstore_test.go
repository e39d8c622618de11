package pgstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// fakeRow implements pgx.Row over a fixed value list.
type fakeRow struct {
	vals []any
	err  error
}

func (f *fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	if len(dest) != len(f.vals) {
		return fmt.Errorf("scan arity mismatch: %d dest, %d vals", len(dest), len(f.vals))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.vals[i].(string)
		case *float64:
			*p = f.vals[i].(float64)
		case *[]byte:
			*p = f.vals[i].([]byte)
		case *bool:
			*p = f.vals[i].(bool)
		case *time.Time:
			*p = f.vals[i].(time.Time)
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}

func TestScanRecordRow(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	row := &fakeRow{vals: []any{
		"rec-1", "fp-1", "URGENT", 0.75,
		[]byte(`["hypotension"]`), []byte(`["fluids","monitor"]`),
		"borderline shock", "2026-08-23T12:00:00Z", false, "gemini-2.0-flash", 1.2, created,
	}}

	r, err := scanRecordRow(row)
	if err != nil {
		t.Fatalf("scanRecordRow: %v", err)
	}
	if r.ID != "rec-1" {
		t.Errorf("ID = %q, want %q", r.ID, "rec-1")
	}
	if r.Result.TriageLevel != triage.LevelUrgent {
		t.Errorf("level = %q, want %q", r.Result.TriageLevel, triage.LevelUrgent)
	}
	if r.Result.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", r.Result.Confidence)
	}
	if len(r.Result.RedFlags) != 1 || r.Result.RedFlags[0] != "hypotension" {
		t.Errorf("red_flags = %v", r.Result.RedFlags)
	}
	if len(r.Result.SuggestedActions) != 2 {
		t.Errorf("suggested_actions = %v", r.Result.SuggestedActions)
	}
	if !r.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", r.CreatedAt, created)
	}
}

func TestScanRecordRow_NoRows(t *testing.T) {
	t.Parallel()

	r, err := scanRecordRow(&fakeRow{err: pgx.ErrNoRows})
	if err != nil {
		t.Fatalf("scanRecordRow: %v", err)
	}
	if r != nil {
		t.Errorf("record = %v, want nil for no rows", r)
	}
}

func TestScanRecordRow_ScanError(t *testing.T) {
	t.Parallel()

	_, err := scanRecordRow(&fakeRow{err: errors.New("broken pipe")})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestScanRecordRow_BadJSON(t *testing.T) {
	t.Parallel()

	row := &fakeRow{vals: []any{
		"rec-1", "fp-1", "ROUTINE", 0.5,
		[]byte(`not json`), []byte(`[]`),
		"", "2026-08-23T12:00:00Z", false, "m", 0.0, time.Now(),
	}}

	_, err := scanRecordRow(row)
	if err == nil {
		t.Fatal("expected error for malformed red_flags column")
	}
}
