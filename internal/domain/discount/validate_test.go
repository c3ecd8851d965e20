package discount

import (
	"testing"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCode() DiscountCode {
	return DiscountCode{
		Code:   "SAVE20",
		Type:   TypePercentage,
		Value:  20,
		Active: true,
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)

	tests := []struct {
		name    string
		mutate  func(*DiscountCode)
		total   int64
		service catalog.ServiceType
		uses    int64
		wantMsg string
	}{
		{
			name:    "inactive code",
			mutate:  func(d *DiscountCode) { d.Active = false },
			total:   99500,
			service: catalog.ServiceMiniMove,
			wantMsg: "invalid or expired code",
		},
		{
			name:    "expired code",
			mutate:  func(d *DiscountCode) { d.ExpiresAt = &expired },
			total:   99500,
			service: catalog.ServiceMiniMove,
			wantMsg: "invalid or expired code",
		},
		{
			name: "wrong service",
			mutate: func(d *DiscountCode) {
				d.ServiceTypes = []catalog.ServiceType{catalog.ServiceStandardDelivery}
			},
			total:   99500,
			service: catalog.ServiceMiniMove,
			wantMsg: "code is not valid for this service",
		},
		{
			name:    "below minimum order",
			mutate:  func(d *DiscountCode) { d.MinOrderCents = 100000 },
			total:   99500,
			service: catalog.ServiceMiniMove,
			wantMsg: "order does not meet the minimum for this code",
		},
		{
			name: "global cap exhausted",
			mutate: func(d *DiscountCode) {
				d.MaxUses = 100
				d.UsedCount = 100
			},
			total:   99500,
			service: catalog.ServiceMiniMove,
			wantMsg: "code has been fully redeemed",
		},
		{
			name:    "per-customer cap on second attempt",
			mutate:  func(d *DiscountCode) { d.MaxUsesPerCustomer = 1 },
			total:   99500,
			service: catalog.ServiceMiniMove,
			uses:    1,
			wantMsg: "code already used by this customer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := activeCode()
			tt.mutate(&code)
			err := code.Validate(now, tt.total, tt.service, tt.uses)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_Passes(t *testing.T) {
	now := time.Now().UTC()

	code := activeCode()
	code.MinOrderCents = 50000
	code.MaxUses = 100
	code.UsedCount = 99
	code.MaxUsesPerCustomer = 1
	code.ServiceTypes = []catalog.ServiceType{catalog.ServiceMiniMove}

	require.NoError(t, code.Validate(now, 99500, catalog.ServiceMiniMove, 0))
}

func TestValidate_EmptyAllowListAllowsAll(t *testing.T) {
	code := activeCode()
	require.NoError(t, code.Validate(time.Now().UTC(), 99500, catalog.ServiceAirportTransfer, 0))
}

func TestAmountFor(t *testing.T) {
	t.Run("percentage floors", func(t *testing.T) {
		code := DiscountCode{Type: TypePercentage, Value: 20}
		assert.Equal(t, int64(19900), code.AmountFor(99500))
		// floor(99 * 0.20) = 19
		assert.Equal(t, int64(19), code.AmountFor(99))
	})

	t.Run("percentage respects cap", func(t *testing.T) {
		code := DiscountCode{Type: TypePercentage, Value: 20, MaxDiscountCents: 10000}
		assert.Equal(t, int64(10000), code.AmountFor(99500))
	})

	t.Run("fixed never exceeds total", func(t *testing.T) {
		code := DiscountCode{Type: TypeFixed, Value: 5000}
		assert.Equal(t, int64(5000), code.AmountFor(99500))
		assert.Equal(t, int64(2000), code.AmountFor(2000))
	})

	t.Run("never negative", func(t *testing.T) {
		code := DiscountCode{Type: TypePercentage, Value: -20}
		assert.Equal(t, int64(0), code.AmountFor(99500))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SAVE20", NormalizeCode("  save20 "))
	assert.Equal(t, "jane@example.com", NormalizeCustomer(" Jane@Example.COM "))
}
