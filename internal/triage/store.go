package triage

import "context"

// Store is the persistence interface for triage records.
type Store interface {
	Get(ctx context.Context, id string) (*Record, bool, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*Record, bool, error)
	Put(ctx context.Context, rec *Record) error
}
