package invoice

import (
	"errors"
	"time"
)

// Type represents the direction of an invoice (collection or disbursement).
type Type string

const (
	TypePayIn  Type = "payin"
	TypePayout Type = "payout"
)

// Status represents the lifecycle state of an invoice. The processor may
// report arbitrary strings beyond the three well-known values, so Status is
// open-ended by design of the integration, not a closed enum.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Meta holds the last-known raw processor payload for an invoice. The
// processor's response shape is not contractually fixed, so this stays an
// open mapping.
type Meta map[string]any

// Invoice is the local mirror of a processor-side transaction. The
// processor remains the source of truth for financial state.
type Invoice struct {
	ID         string
	ExternalID string
	Type       Type
	Amount     float64
	Currency   string
	CreatedAt  time.Time
	Status     Status
	Meta       Meta
}

var (
	// ErrNotFound is returned when no invoice matches a lookup key.
	ErrNotFound = errors.New("invoice not found")

	// ErrInvalidInput is returned for client-supplied values that fail
	// validation before any side effect takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrKeyConflict is returned when persisting an invoice whose id or
	// externalId would collide with a different invoice's key. Ids and
	// external ids share one identity space.
	ErrKeyConflict = errors.New("invoice key conflict")
)
