//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	bookingEvents "github.com/BrightMove-Delivery/service-booking/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPaymentSucceeded_MarksBookingPaid verifies that when a
// PaymentSucceededEvent is published to payment.events, the booking
// service picks it up and transitions the booking to "paid" status.
func TestPaymentSucceeded_MarksBookingPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a booking in "confirmed" state awaiting payment.
	bookingID := uuid.New()
	customerID := uuid.New()
	seedConfirmedBooking(t, infra.DB, bookingID, customerID, 99500)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish PaymentSucceededEvent.
	evt := bookingEvents.PaymentSucceededEvent{
		PaymentID:   uuid.New(),
		BookingID:   bookingID,
		AmountCents: 99500,
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentSucceeded, evt)

	// Assert: booking transitions to "paid".
	model := waitForBookingStatus(t, infra.DB, bookingID, "paid", 15*time.Second)
	assert.NotNil(t, model.PaidAt, "paid_at should be set")
	assert.Equal(t, int64(3), model.Version, "optimistic lock version should advance")

	// Assert: BookingPaid event on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingPaid, 15*time.Second)

	var paid bookingEvents.BookingEvent
	require.NoError(t, ce.ParseData(&paid))
	assert.Equal(t, bookingID, paid.BookingID)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, int64(99500), paid.TotalCents)
}

// TestPaymentBeforeBookingCommit_RetriesUntilVisible verifies the
// consumer's bounded backoff: a payment event for a booking that does
// not exist yet is retried, and succeeds once the row appears.
func TestPaymentBeforeBookingCommit_RetriesUntilVisible(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	bookingID := uuid.New()
	customerID := uuid.New()

	// Publish the payment confirmation first, then commit the booking
	// shortly after, inside the consumer's retry window.
	evt := bookingEvents.PaymentSucceededEvent{
		PaymentID:   uuid.New(),
		BookingID:   bookingID,
		AmountCents: 47500,
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentSucceeded, evt)

	time.Sleep(150 * time.Millisecond)
	seedConfirmedBooking(t, infra.DB, bookingID, customerID, 47500)

	model := waitForBookingStatus(t, infra.DB, bookingID, "paid", 15*time.Second)
	assert.NotNil(t, model.PaidAt)
}
