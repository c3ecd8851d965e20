package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/pricing"
	"github.com/google/uuid"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. It holds the
// priced breakdown as an immutable value; re-pricing replaces the
// whole breakdown rather than mutating it in place.
type Booking struct {
	id            uuid.UUID
	bookingNumber string

	// Exactly one of customerID / guestEmail is set, never both.
	customerID *uuid.UUID
	guestEmail string
	guestName  string

	status       Status
	serviceType  catalog.ServiceType
	spec         pricing.QuoteSpec
	breakdown    pricing.Breakdown
	discountCode string

	statsRecorded bool

	confirmedAt *time.Time
	paidAt      *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string
	notes       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BM-XXXXXX".
// The identifier space is collision-resistant; the bookings table still
// carries a unique constraint and Save retries on conflict.
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BM-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending from
// an already-priced spec.
func NewBooking(
	customerID *uuid.UUID,
	guestEmail string,
	guestName string,
	spec pricing.QuoteSpec,
	breakdown pricing.Breakdown,
	discountCode string,
	notes string,
) (*Booking, error) {
	guestEmail = strings.ToLower(strings.TrimSpace(guestEmail))
	if customerID == nil && guestEmail == "" {
		return nil, domain.NewValidationError("either a customer or a guest contact is required")
	}
	if customerID != nil && guestEmail != "" {
		return nil, domain.NewValidationError("a booking cannot have both a customer and a guest contact")
	}
	if customerID != nil && *customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if !spec.ServiceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", spec.ServiceType))
	}
	if breakdown.TotalCents < 0 {
		return nil, domain.NewValidationError("breakdown total cannot be negative")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		customerID:    customerID,
		guestEmail:    guestEmail,
		guestName:     strings.TrimSpace(guestName),
		status:        StatusPending,
		serviceType:   spec.ServiceType,
		spec:          spec,
		breakdown:     breakdown,
		discountCode:  discountCode,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	customerID *uuid.UUID,
	guestEmail string,
	guestName string,
	status Status,
	serviceType catalog.ServiceType,
	spec pricing.QuoteSpec,
	breakdown pricing.Breakdown,
	discountCode string,
	statsRecorded bool,
	confirmedAt *time.Time,
	paidAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		customerID:    customerID,
		guestEmail:    guestEmail,
		guestName:     guestName,
		status:        status,
		serviceType:   serviceType,
		spec:          spec,
		breakdown:     breakdown,
		discountCode:  discountCode,
		statsRecorded: statsRecorded,
		confirmedAt:   confirmedAt,
		paidAt:        paidAt,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
		cancelNote:    cancelNote,
		notes:         notes,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerID returns the authenticated customer's user ID, or nil for guests.
func (b *Booking) CustomerID() *uuid.UUID { return b.customerID }

// GuestEmail returns the guest contact email, or "" for authenticated customers.
func (b *Booking) GuestEmail() string { return b.guestEmail }

// GuestName returns the guest contact name.
func (b *Booking) GuestName() string { return b.guestName }

// CustomerKey returns the identity used for discount usage and
// statistics accounting: the user ID for customers, the lowercased
// email for guests.
func (b *Booking) CustomerKey() string {
	if b.customerID != nil {
		return b.customerID.String()
	}
	return b.guestEmail
}

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// ServiceType returns the booked service type.
func (b *Booking) ServiceType() catalog.ServiceType { return b.serviceType }

// Spec returns the priced quote specification.
func (b *Booking) Spec() pricing.QuoteSpec { return b.spec }

// Breakdown returns the itemized price breakdown.
func (b *Booking) Breakdown() pricing.Breakdown { return b.breakdown }

// TotalCents returns the booking total in cents.
func (b *Booking) TotalCents() int64 { return b.breakdown.TotalCents }

// DiscountCode returns the applied discount code, or "".
func (b *Booking) DiscountCode() string { return b.discountCode }

// StatsRecorded reports whether this booking's completion has been
// counted into customer statistics.
func (b *Booking) StatsRecorded() bool { return b.statsRecorded }

// ConfirmedAt returns the confirmation timestamp.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// PaidAt returns the payment timestamp.
func (b *Booking) PaidAt() *time.Time { return b.paidAt }

// CompletedAt returns the completion timestamp.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the cancellation timestamp.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// ValidateTransition reports whether moving from current to requested
// is a legal edge, with a typed rejection otherwise.
func ValidateTransition(current, requested Status) error {
	if !requested.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown booking status: %s", requested))
	}
	if !current.CanTransitionTo(requested) {
		return domain.NewInvalidStateError(string(current), string(requested))
	}
	return nil
}

// TransitionTo moves the booking to the target status and returns the
// side effects the caller must execute. A disallowed edge or unknown
// status is an explicit error, never a silent no-op.
func (b *Booking) TransitionTo(target Status) ([]Effect, error) {
	if err := ValidateTransition(b.status, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.status = target
	b.updatedAt = now

	var effects []Effect
	switch target {
	case StatusConfirmed:
		b.confirmedAt = &now
		effects = append(effects, EffectNotifyCustomer)
	case StatusPaid:
		b.paidAt = &now
		effects = append(effects, EffectNotifyCustomer)
	case StatusCompleted:
		b.completedAt = &now
		effects = append(effects, EffectRecordStats)
	case StatusCancelled:
		b.cancelledAt = &now
	}
	return effects, nil
}

// Cancel transitions the booking to cancelled with a reason, if it is
// not in a terminal state.
func (b *Booking) Cancel(reason string) ([]Effect, error) {
	effects, err := b.TransitionTo(StatusCancelled)
	if err != nil {
		return nil, err
	}
	b.cancelNote = reason
	return effects, nil
}

// Reprice replaces the spec and breakdown with freshly computed values.
// Once a booking has been paid its price is locked; only status may
// change afterwards.
func (b *Booking) Reprice(spec pricing.QuoteSpec, breakdown pricing.Breakdown) error {
	switch b.status {
	case StatusPending, StatusConfirmed:
		// re-priceable
	default:
		return domain.NewInvalidStateError(string(b.status), "repriced")
	}
	if spec.ServiceType != b.serviceType {
		return domain.NewValidationError("service type cannot change on an existing booking")
	}
	b.spec = spec
	b.breakdown = breakdown
	b.updatedAt = time.Now().UTC()
	return nil
}

// RemoveDiscount strips a discount that could not be redeemed after
// the booking was persisted, restoring the undiscounted breakdown.
func (b *Booking) RemoveDiscount(breakdown pricing.Breakdown) {
	b.discountCode = ""
	b.breakdown = breakdown
	b.updatedAt = time.Now().UTC()
}

// UpdateNotes replaces the booking's free-form notes.
func (b *Booking) UpdateNotes(notes string) {
	b.notes = notes
	b.updatedAt = time.Now().UTC()
}

// MarkStatsRecorded flags the booking's completion as counted. The
// authoritative guard is the conditional update in the stats
// repository; this keeps the in-memory aggregate consistent with it.
func (b *Booking) MarkStatsRecorded() {
	b.statsRecorded = true
}

// RegenerateNumber assigns a fresh booking number after a uniqueness
// conflict on save. Never called once the booking is persisted.
func (b *Booking) RegenerateNumber() error {
	n, err := generateBookingNumber()
	if err != nil {
		return err
	}
	b.bookingNumber = n
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
