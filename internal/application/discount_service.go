package application

import (
	"context"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/discount"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DiscountPreview is the result of validating a code without redeeming it.
type DiscountPreview struct {
	CodeID      uuid.UUID `json:"-"`
	Code        string    `json:"code"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
}

// DiscountService validates and redeems discount codes.
type DiscountService struct {
	repo   discount.Repository
	logger *zap.Logger
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(repo discount.Repository, logger *zap.Logger) *DiscountService {
	return &DiscountService{repo: repo, logger: logger}
}

// Preview validates a code for an order and computes the discount
// amount. Nothing is recorded; redemption happens separately, after
// the booking is durably persisted.
func (s *DiscountService) Preview(ctx context.Context, code string, orderTotalCents int64, serviceType catalog.ServiceType, customerIdentity string) (*DiscountPreview, error) {
	dc, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if domain.IsNotFound(err) {
			// An unknown code reads the same as a dead one to callers.
			return nil, domain.NewValidationError("invalid or expired code")
		}
		return nil, err
	}

	var customerUses int64
	if customerIdentity != "" {
		customerUses, err = s.repo.CountCustomerUses(ctx, dc.ID, discount.NormalizeCustomer(customerIdentity))
		if err != nil {
			return nil, err
		}
	}

	if err := dc.Validate(time.Now().UTC(), orderTotalCents, serviceType, customerUses); err != nil {
		return nil, err
	}

	return &DiscountPreview{
		CodeID:      dc.ID,
		Code:        dc.Code,
		Label:       fmt.Sprintf("Discount (%s)", dc.Code),
		AmountCents: dc.AmountFor(orderTotalCents),
	}, nil
}

// Redeem records a redemption for a persisted booking. The repository
// enforces the usage caps atomically, so a concurrent redemption that
// raced past Preview is rejected here.
func (s *DiscountService) Redeem(ctx context.Context, preview *DiscountPreview, bookingID uuid.UUID, customerIdentity string) error {
	usage := discount.Usage{
		ID:          uuid.New(),
		CodeID:      preview.CodeID,
		CustomerKey: discount.NormalizeCustomer(customerIdentity),
		BookingID:   bookingID,
		AmountCents: preview.AmountCents,
		RedeemedAt:  time.Now().UTC(),
	}
	return s.repo.Redeem(ctx, usage)
}
