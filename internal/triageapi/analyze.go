package triageapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type analyzeRequest struct {
	Note string `json:"note"`
}

type batchRequest struct {
	Notes []string `json:"notes"`
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		http.Error(w, `{"error":"note is required"}`, http.StatusBadRequest)
		return
	}

	rec := a.svc.Analyze(r.Context(), req.Note)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("acuity.record.id", rec.ID),
		attribute.String("acuity.triage_level", string(rec.Result.TriageLevel)),
		attribute.Bool("acuity.fallback", rec.Fallback),
	)

	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if len(req.Notes) == 0 {
		http.Error(w, `{"error":"notes is required"}`, http.StatusBadRequest)
		return
	}
	if len(req.Notes) > a.maxBatch {
		http.Error(w, `{"error":"too many notes"}`, http.StatusRequestEntityTooLarge)
		return
	}

	recs := a.svc.AnalyzeBatch(r.Context(), req.Notes, a.batchWorkers)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("acuity.batch.size", len(req.Notes)))

	writeJSON(w, http.StatusOK, map[string]any{
		"results": recs,
	})
}
