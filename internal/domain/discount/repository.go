package discount

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for discount codes and their
// redemptions.
type Repository interface {
	// FindByCode retrieves a code by its normalized string form.
	FindByCode(ctx context.Context, code string) (*DiscountCode, error)

	// CountCustomerUses returns prior redemptions of a code by one customer.
	CountCustomerUses(ctx context.Context, codeID uuid.UUID, customer string) (int64, error)

	// Redeem records one redemption atomically: it increments the
	// global counter only while it remains under the cap, re-checks
	// the per-customer cap under the same transaction, and inserts the
	// usage row. Returns a conflict error if either cap would be
	// exceeded, so concurrent redemptions cannot both pass a
	// check-then-act window.
	Redeem(ctx context.Context, usage Usage) error
}
