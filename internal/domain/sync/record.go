package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Direction indicates which way a sync operation moved data.
type Direction string

const (
	// DirectionInbound is storefront event to ERP record.
	DirectionInbound Direction = "INBOUND"
	// DirectionOutbound is ERP data pulled toward the storefront side.
	DirectionOutbound Direction = "OUTBOUND"
)

// IsValid checks if the direction is a known value.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound:
		return true
	}
	return false
}

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// Record is the audit trail entry written for every sync invocation,
// successful or not. Persisting it must never affect the invocation's
// outcome.
type Record struct {
	ID           uuid.UUID
	EntityKind   EntityKind
	EntityID     string
	Direction    Direction
	Method       Method
	Success      bool
	Reference    string
	ErrorMessage string
	DurationMS   int64
	CreatedAt    time.Time
}

// NewRecord builds an audit record from a finished invocation.
func NewRecord(kind EntityKind, entityID string, direction Direction, method Method) *Record {
	return &Record{
		ID:         uuid.New(),
		EntityKind: kind,
		EntityID:   entityID,
		Direction:  direction,
		Method:     method,
		CreatedAt:  time.Now().UTC(),
	}
}

// Finish stamps the record with the invocation's outcome and duration.
func (r *Record) Finish(outcome *Outcome, took time.Duration) *Record {
	r.Success = outcome.Success
	r.Reference = outcome.Reference
	r.ErrorMessage = outcome.Error
	r.DurationMS = took.Milliseconds()
	return r
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	EntityKind EntityKind
	Success    *bool
	Limit      int
}

// RecordRepository persists and queries sync audit records.
type RecordRepository interface {
	// Save stores one audit record.
	Save(ctx context.Context, record *Record) error

	// List returns the most recent records matching the filter, newest
	// first.
	List(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// CountFailuresSince counts failed syncs after the given time, for
	// health reporting.
	CountFailuresSince(ctx context.Context, since time.Time) (int64, error)
}
