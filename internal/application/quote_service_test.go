package application

import (
	"context"
	"testing"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/discount"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQuote_PricesWithoutPersisting(t *testing.T) {
	logger := zap.NewNop()
	discounts := &fakeDiscountRepo{}
	svc := NewQuoteService(&fakeCatalogRepo{snap: testSnapshot()}, NewDiscountService(discounts, logger), logger)

	dto, err := svc.Quote(context.Background(), QuoteRequest{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &testPkgID,
		PickupDate:  time.Now().UTC().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(99500), dto.TotalCents)
	assert.Len(t, dto.LineItems, 1)
}

func TestQuote_DiscountPreviewedNotRedeemed(t *testing.T) {
	logger := zap.NewNop()
	discounts := &fakeDiscountRepo{code: &discount.DiscountCode{
		ID: uuid.New(), Code: "SAVE20", Type: discount.TypePercentage, Value: 20, Active: true,
	}}
	svc := NewQuoteService(&fakeCatalogRepo{snap: testSnapshot()}, NewDiscountService(discounts, logger), logger)

	dto, err := svc.Quote(context.Background(), QuoteRequest{
		ServiceType:  catalog.ServiceMiniMove,
		PackageID:    &testPkgID,
		PickupDate:   time.Now().UTC().Add(72 * time.Hour),
		DiscountCode: "save20",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(79600), dto.TotalCents)
	// Quoting must never burn a redemption.
	assert.Empty(t, discounts.usages)
	assert.Zero(t, discounts.code.UsedCount)
}
