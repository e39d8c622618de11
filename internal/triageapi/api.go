// Package triageapi exposes the triage service over HTTP.
package triageapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// TriageService defines the business operations triageapi needs.
type TriageService interface {
	Analyze(ctx context.Context, note string) *triage.Record
	AnalyzeBatch(ctx context.Context, notes []string, workers int) []*triage.Record
	Get(ctx context.Context, id string) (*triage.Record, bool, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*triage.Record, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger       log.Logger
	svc          TriageService
	batchWorkers int
	maxBatch     int
}

// New creates a new API handler. batchWorkers bounds concurrent
// reasoning calls per batch request.
func New(logger log.Logger, svc TriageService, batchWorkers int) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger:       logger,
		svc:          svc,
		batchWorkers: batchWorkers,
		maxBatch:     100,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", a.handleAnalyze)
		r.Post("/analyze/batch", a.handleAnalyzeBatch)
		r.Get("/results/{id}", a.handleGetResult)
	})
}

func (a *API) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("acuity.record.id", id))

	rec, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get triage record", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("acuity.triage_level", string(rec.Result.TriageLevel)))

	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with encode errors here
	_ = json.NewEncoder(w).Encode(v)
}
