package events

import (
	"context"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	paymentRetryAttempts = 5
	paymentRetryBaseWait = 100 * time.Millisecond
)

// BookingMarker is the slice of the booking service the payment
// consumer needs: moving a booking to paid.
type BookingMarker interface {
	MarkPaid(ctx context.Context, bookingID uuid.UUID) error
}

// PaymentEventConsumer listens to payment events and moves bookings to
// paid. Payment confirmations can arrive before the booking row is
// committed locally, so a not-found is retried with bounded backoff
// before being logged as a delivery failure.
type PaymentEventConsumer struct {
	consumer *Consumer
	service  BookingMarker
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service BookingMarker,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentSucceeded:
		return c.handlePaymentSucceeded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentSucceeded(ctx context.Context, cloudEvent CloudEvent) error {
	var evt PaymentSucceededEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentSucceededEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment succeeded event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	var lastErr error
	wait := paymentRetryBaseWait
	for attempt := 1; attempt <= paymentRetryAttempts; attempt++ {
		lastErr = c.service.MarkPaid(ctx, evt.BookingID)
		if lastErr == nil {
			c.logger.Info("booking marked paid",
				zap.String("booking_id", evt.BookingID.String()),
			)
			return nil
		}
		// Only the webhook race (confirmation ahead of the local
		// commit) is worth retrying; anything else is final.
		if !domain.IsNotFound(lastErr) {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
	}

	c.logger.Error("failed to mark booking paid; needs manual reconciliation",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
		zap.Error(lastErr),
	)
	return nil
}
