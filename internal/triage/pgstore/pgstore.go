// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/acuity/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/acuity/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const recordColumns = `id, fingerprint, triage_level, confidence, red_flags,
	suggested_actions, reasoning, result_timestamp, fallback, model, duration_s, created_at`

// Get retrieves a triage record by ID.
//
//nolint:dupl // similar structure to GetByFingerprint is intentional
func (s *Store) Get(ctx context.Context, id string) (*triage.Record, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + recordColumns + ` FROM triage_records WHERE id = $1`
	r, err := scanRecordRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// GetByFingerprint retrieves the most recent record for a note fingerprint.
//
//nolint:dupl // similar structure to Get is intentional
func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (*triage.Record, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByFingerprint", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + recordColumns + ` FROM triage_records
		WHERE fingerprint = $1 ORDER BY created_at DESC LIMIT 1`
	r, err := scanRecordRow(s.pool.QueryRow(ctx, query, fingerprint))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// Put inserts a triage record. Records are immutable, so a conflicting
// ID is a programming error and surfaces as a constraint violation.
func (s *Store) Put(ctx context.Context, r *triage.Record) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	redFlagsJSON, err := json.Marshal(r.Result.RedFlags)
	if err != nil {
		return fmt.Errorf("marshal red_flags: %w", err)
	}
	actionsJSON, err := json.Marshal(r.Result.SuggestedActions)
	if err != nil {
		return fmt.Errorf("marshal suggested_actions: %w", err)
	}

	query := `INSERT INTO triage_records (
		id, fingerprint, triage_level, confidence, red_flags,
		suggested_actions, reasoning, result_timestamp, fallback, model, duration_s, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.Fingerprint, string(r.Result.TriageLevel), r.Result.Confidence, redFlagsJSON,
		actionsJSON, r.Result.Reasoning, r.Result.Timestamp, r.Fallback, r.Model, r.Duration, r.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// scanRecordRow scans a single row into a triage.Record.
// Returns (nil, nil) when no row is found.
func scanRecordRow(row pgx.Row) (*triage.Record, error) {
	var (
		r            triage.Record
		level        string
		redFlagsJSON []byte
		actionsJSON  []byte
	)

	err := row.Scan(
		&r.ID, &r.Fingerprint, &level, &r.Result.Confidence, &redFlagsJSON,
		&actionsJSON, &r.Result.Reasoning, &r.Result.Timestamp, &r.Fallback,
		&r.Model, &r.Duration, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.Result.TriageLevel = triage.Level(level)

	if err := json.Unmarshal(redFlagsJSON, &r.Result.RedFlags); err != nil {
		return nil, fmt.Errorf("unmarshal red_flags: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &r.Result.SuggestedActions); err != nil {
		return nil, fmt.Errorf("unmarshal suggested_actions: %w", err)
	}

	return &r, nil
}
