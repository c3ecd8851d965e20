package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published by this service.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingPaid      = "booking.paid"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
)

// Event types consumed from the payment service.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentRefunded  = "payment.refunded"
)

// BookingEvent is the payload for every booking lifecycle event. The
// notification sender downstream treats these as fire-and-forget.
type BookingEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerKey   string    `json:"customer_key"`
	ServiceType   string    `json:"service_type"`
	Status        string    `json:"status"`
	TotalCents    int64     `json:"total_cents"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is emitted by the payment service once a
// payment intent is confirmed. It may arrive before the local booking
// row is committed; consumers retry with bounded backoff.
type PaymentSucceededEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}
