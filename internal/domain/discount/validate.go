package discount

import (
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
)

// Validate checks a code's eligibility for an order. Checks run in a
// fixed order and the first failure wins:
//
//  1. active and not expired
//  2. service-type allow-list
//  3. minimum order
//  4. global usage cap
//  5. per-customer usage cap
//
// customerUses is the caller-supplied count of prior redemptions by
// this customer; the pure check here is backed by an atomic guard at
// redemption time, since two concurrent validations may both pass.
func (d DiscountCode) Validate(now time.Time, orderTotalCents int64, serviceType catalog.ServiceType, customerUses int64) error {
	if !d.Active || (d.ExpiresAt != nil && d.ExpiresAt.Before(now)) {
		return domain.NewValidationError("invalid or expired code")
	}
	if len(d.ServiceTypes) > 0 && !d.allowsService(serviceType) {
		return domain.NewValidationError("code is not valid for this service")
	}
	if d.MinOrderCents > 0 && orderTotalCents < d.MinOrderCents {
		return domain.NewValidationError("order does not meet the minimum for this code")
	}
	if d.MaxUses > 0 && d.UsedCount >= d.MaxUses {
		return domain.NewValidationError("code has been fully redeemed")
	}
	if d.MaxUsesPerCustomer > 0 && customerUses >= d.MaxUsesPerCustomer {
		return domain.NewValidationError("code already used by this customer")
	}
	return nil
}

// AmountFor computes the discount in cents against a pre-discount
// total. Percentage amounts round down and respect the configured cap;
// fixed amounts never exceed the total.
func (d DiscountCode) AmountFor(orderTotalCents int64) int64 {
	var amount int64
	switch d.Type {
	case TypePercentage:
		amount = orderTotalCents * d.Value / 100
		if d.MaxDiscountCents > 0 && amount > d.MaxDiscountCents {
			amount = d.MaxDiscountCents
		}
	case TypeFixed:
		amount = d.Value
		if amount > orderTotalCents {
			amount = orderTotalCents
		}
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func (d DiscountCode) allowsService(st catalog.ServiceType) bool {
	for _, s := range d.ServiceTypes {
		if s == st {
			return true
		}
	}
	return false
}
