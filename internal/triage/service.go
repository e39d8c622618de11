package triage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Notifier receives records for out-of-band operator notification.
type Notifier interface {
	Notify(ctx context.Context, rec *Record) error
}

// Service is the business boundary for triage operations. It runs the
// engine, wraps results into records, persists them, and notifies
// operators when the safety fallback fired.
type Service struct {
	store    Store
	engine   *Engine
	logger   log.Logger
	notifier Notifier
}

// NewService creates a new triage service. notifier may be nil.
func NewService(store Store, engine *Engine, logger log.Logger, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		engine:   engine,
		logger:   logger,
		notifier: notifier,
	}
}

// Analyze runs the pipeline for one note and persists the record. The
// record is always returned: store and notifier failures are logged and
// swallowed so that a produced result is never lost to a peripheral
// error.
func (s *Service) Analyze(ctx context.Context, note string) *Record {
	start := time.Now()

	result := s.engine.Analyze(ctx, note)

	rec := &Record{
		ID:          ulid.Make().String(),
		Fingerprint: Fingerprint(note),
		Result:      *result,
		Fallback:    len(result.RedFlags) > 0 && result.RedFlags[0] == FallbackRedFlag,
		Model:       s.engine.Model(),
		Duration:    time.Since(start).Seconds(),
		CreatedAt:   time.Now(),
	}

	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.Error(ctx, err, "failed to persist triage record", "record_id", rec.ID)
	}

	if rec.Fallback && s.notifier != nil {
		if err := s.notifier.Notify(ctx, rec); err != nil {
			s.logger.Error(ctx, err, "failed to send fallback notification", "record_id", rec.ID)
		}
	}

	return rec
}

// AnalyzeBatch runs the pipeline over notes with the given concurrency
// bound, persisting one record per note. Output order matches input
// order and output length always equals input length.
func (s *Service) AnalyzeBatch(ctx context.Context, notes []string, workers int) []*Record {
	recs := make([]*Record, len(notes))

	for i, tr := range s.engine.analyzeBatch(ctx, notes, workers) {
		result := tr.result
		rec := &Record{
			ID:          ulid.Make().String(),
			Fingerprint: Fingerprint(notes[i]),
			Result:      *result,
			Fallback:    len(result.RedFlags) > 0 && result.RedFlags[0] == FallbackRedFlag,
			Model:       s.engine.Model(),
			Duration:    tr.seconds,
			CreatedAt:   time.Now(),
		}
		if err := s.store.Put(ctx, rec); err != nil {
			s.logger.Error(ctx, err, "failed to persist triage record", "record_id", rec.ID)
		}
		if rec.Fallback && s.notifier != nil {
			if err := s.notifier.Notify(ctx, rec); err != nil {
				s.logger.Error(ctx, err, "failed to send fallback notification", "record_id", rec.ID)
			}
		}
		recs[i] = rec
	}

	return recs
}

// Get retrieves a triage record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, bool, error) {
	return s.store.Get(ctx, id)
}

// GetByFingerprint retrieves the most recent record for a note
// fingerprint.
func (s *Service) GetByFingerprint(ctx context.Context, fp string) (*Record, bool, error) {
	return s.store.GetByFingerprint(ctx, fp)
}

// Fingerprint hashes a note for record lookup. Records store only this
// hash, never the note text.
func Fingerprint(note string) string {
	sum := sha256.Sum256([]byte(note))
	return hex.EncodeToString(sum[:])
}
