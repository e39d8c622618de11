package triageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// mockService implements TriageService for handler tests.
type mockService struct {
	records map[string]*triage.Record
	getErr  error
}

func (m *mockService) Analyze(_ context.Context, note string) *triage.Record {
	return &triage.Record{
		ID:          "rec-" + note,
		Fingerprint: triage.Fingerprint(note),
		Result: triage.Result{
			TriageLevel:      triage.LevelRoutine,
			Confidence:       0.5,
			RedFlags:         []string{},
			SuggestedActions: []string{},
		},
	}
}

func (m *mockService) AnalyzeBatch(ctx context.Context, notes []string, _ int) []*triage.Record {
	recs := make([]*triage.Record, len(notes))
	for i, n := range notes {
		recs[i] = m.Analyze(ctx, n)
	}
	return recs
}

func (m *mockService) Get(_ context.Context, id string) (*triage.Record, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.records[id]
	return r, ok, nil
}

func (m *mockService) GetByFingerprint(_ context.Context, fp string) (*triage.Record, bool, error) {
	for _, r := range m.records {
		if r.Fingerprint == fp {
			return r, true, nil
		}
	}
	return nil, false, nil
}

func newTestRouter(svc TriageService) http.Handler {
	a := New(log.Nop(), svc, 2)
	r := chi.NewRouter()
	a.RegisterRoutes(r)
	return r
}

func TestHandleAnalyze(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"note": "persistent cough"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var rec triage.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if rec.ID != "rec-persistent cough" {
		t.Errorf("ID = %q", rec.ID)
	}
	if rec.Result.TriageLevel != triage.LevelRoutine {
		t.Errorf("level = %q, want ROUTINE", rec.Result.TriageLevel)
	}
}

func TestHandleAnalyze_InvalidPayload(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleAnalyze_EmptyNote(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	for _, body := range []string{`{}`, `{"note": ""}`, `{"note": "   "}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
			strings.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestHandleAnalyzeBatch(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch",
		strings.NewReader(`{"notes": ["one", "two", "three"]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Results []*triage.Record `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if resp.Results[1].ID != "rec-two" {
		t.Errorf("results[1].ID = %q, want the second note's record", resp.Results[1].ID)
	}
}

func TestHandleAnalyzeBatch_Empty(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch",
		strings.NewReader(`{"notes": []}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleAnalyzeBatch_TooLarge(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{})

	notes := make([]string, 101)
	for i := range notes {
		notes[i] = "n"
	}
	body, _ := json.Marshal(map[string]any{"notes": notes})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch",
		strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rr.Code)
	}
}

func TestHandleGetResult(t *testing.T) {
	t.Parallel()

	svc := &mockService{records: map[string]*triage.Record{
		"rec-1": {ID: "rec-1", Result: triage.Result{TriageLevel: triage.LevelEmergent}},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/rec-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var rec triage.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if rec.Result.TriageLevel != triage.LevelEmergent {
		t.Errorf("level = %q, want EMERGENT", rec.Result.TriageLevel)
	}
}

func TestHandleGetResult_NotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{records: map[string]*triage.Record{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandleGetResult_StoreError(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockService{getErr: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/rec-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestNew_RequiresService(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil service")
		}
	}()
	New(log.Nop(), nil, 2)
}
