package booking

import (
	"context"
	"errors"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSlotTaken        = errors.New("slot already has an active booking")
)

// Ledger is the append-only record of reservations. The Writer is its only
// mutator; the availability projector and the statistics aggregator read it.
type Ledger interface {
	// Append persists a booking. It returns ErrSlotTaken when an active
	// booking already holds the same slot key, so a transactional store can
	// serve as the compare-and-append primitive.
	Append(ctx context.Context, b *Booking) error

	// FindActive returns the active booking holding key, or ErrBookingNotFound.
	FindActive(ctx context.Context, key SlotKey) (*Booking, error)

	ListActive(ctx context.Context) ([]Booking, error)

	// Cancel transitions a booking to cancelled, freeing its slot key.
	Cancel(ctx context.Context, id string) (*Booking, error)

	// Remove physically deletes a booking record.
	Remove(ctx context.Context, id string) error
}

// Catalog exposes the externally owned provider records.
type Catalog interface {
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProvider(ctx context.Context, id string) (*Provider, error)
}

// SessionStore exposes the read-only historical session dataset.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]Session, error)
}
