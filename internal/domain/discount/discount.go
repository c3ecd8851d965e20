package discount

import (
	"strings"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
)

// DiscountType determines how a code's value is interpreted.
type DiscountType string

const (
	TypePercentage DiscountType = "percentage"
	TypeFixed      DiscountType = "fixed"
)

// DiscountCode is a redeemable code with eligibility constraints and
// usage caps. Codes are case-insensitive; the canonical form is upper.
type DiscountCode struct {
	ID    uuid.UUID
	Code  string
	Type  DiscountType
	Value int64 // whole percent for percentage codes, cents for fixed

	MinOrderCents    int64 // 0 = no minimum
	MaxDiscountCents int64 // 0 = uncapped; percentage codes only

	ServiceTypes []catalog.ServiceType // empty = all services

	MaxUses            int64 // 0 = uncapped
	MaxUsesPerCustomer int64 // 0 = uncapped
	UsedCount          int64

	Active    bool
	ExpiresAt *time.Time
}

// Usage is one redemption row, keyed by (code, customer, booking), so
// per-customer caps are enforceable without relying on mutable
// counters alone.
type Usage struct {
	ID          uuid.UUID
	CodeID      uuid.UUID
	CustomerKey string // user ID or guest email, lowercased
	BookingID   uuid.UUID
	AmountCents int64
	RedeemedAt  time.Time
}

// NormalizeCode returns the canonical form of a code string.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCustomer returns the canonical customer identity used for
// per-customer usage accounting.
func NormalizeCustomer(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
