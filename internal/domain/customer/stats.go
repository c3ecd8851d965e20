package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stats is the derived per-customer booking aggregate. It is never the
// source of truth for price; it reflects each completed booking's
// contribution exactly once.
type Stats struct {
	CustomerKey   string
	TotalBookings int64
	TotalSpent    int64 // cents
	LastBookingAt *time.Time
}

// CompletionDelta is one booking's contribution to a customer's stats.
type CompletionDelta struct {
	BookingID   uuid.UUID
	CustomerKey string
	SpentCents  int64
	CompletedAt time.Time
}

// StatsRepository is the persistence contract for customer statistics.
type StatsRepository interface {
	// RecordCompletion applies a completion delta exactly once per
	// booking, no matter how many times the completion event is
	// delivered. The increment must be an atomic database add, never
	// a read-modify-write of a fetched value, so concurrent
	// completions for the same customer cannot lose updates. Returns
	// true if the delta was applied, false if it had already been
	// recorded for this booking.
	RecordCompletion(ctx context.Context, delta CompletionDelta) (bool, error)

	// Get retrieves a customer's current statistics.
	Get(ctx context.Context, customerKey string) (*Stats, error)
}
