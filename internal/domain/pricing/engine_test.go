package pricing

import (
	"testing"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	petitePkgID   = uuid.New()
	standardPkgID = uuid.New()
	fullPkgID     = uuid.New()
	packingSvcID  = uuid.New()
	surfboardID   = uuid.New()
)

// weekday returns a Wednesday pickup date.
func weekday() time.Time {
	return time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
}

// saturday returns a Saturday pickup date.
func saturday() time.Time {
	return time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
}

func testSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Packages: map[uuid.UUID]catalog.ServicePackage{
			petitePkgID: {
				ID: petitePkgID, Tier: catalog.TierPetite, Name: "Petite Move",
				BasePriceCents: 99500, COIFeeCents: 9900, Active: true,
			},
			standardPkgID: {
				ID: standardPkgID, Tier: catalog.TierStandard, Name: "Standard Move",
				BasePriceCents: 179500, COIFeeCents: 9900, Active: true,
			},
			fullPkgID: {
				ID: fullPkgID, Tier: catalog.TierFull, Name: "Full Move",
				BasePriceCents: 299500, COIIncluded: true, Active: true,
			},
		},
		DeliveryConfig: &catalog.StandardDeliveryConfig{
			ID:               uuid.New(),
			PerItemCents:     9500,
			MinimumItems:     1,
			MinimumCents:     28500,
			SameDayFlatCents: 36000,
			Active:           true,
		},
		SpecialtyItems: map[uuid.UUID]catalog.SpecialtyItem{
			surfboardID: {ID: surfboardID, Name: "Surfboard", PriceCents: 30000, Active: true},
		},
		OrganizingServices: map[uuid.UUID]catalog.OrganizingService{
			packingSvcID: {
				ID: packingSvcID, Kind: catalog.OrganizingPacking, Tier: catalog.TierStandard,
				Name: "Standard Packing", PriceCents: 50000, Active: true,
			},
		},
	}
}

func TestCompute_PetitePackageWeekday(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &petitePkgID,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, int64(99500), bd.BaseCents)
	assert.Equal(t, int64(99500), bd.TotalCents)
	assert.Len(t, bd.LineItems, 1)
}

func TestCompute_WeekendSurchargeFloors(t *testing.T) {
	snap := testSnapshot()
	snap.SurchargeRules = []catalog.SurchargeRule{{
		ID: uuid.New(), Name: "Weekend surcharge", Type: catalog.SurchargeWeekend,
		Calculation: catalog.CalcPercentage, Percent: 15,
		AppliesSaturday: true, AppliesSunday: true, Active: true,
	}}

	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &petitePkgID,
		PickupDate:  saturday(),
	}

	bd, err := Compute(spec, snap)
	require.NoError(t, err)

	// floor(99500 * 0.15) = 14925
	assert.Equal(t, int64(14925), bd.DateSurchargeCents)
	assert.Equal(t, int64(114425), bd.TotalCents)
}

func TestCompute_OrganizingTaxOnlyOnAddOns(t *testing.T) {
	spec := QuoteSpec{
		ServiceType:          catalog.ServiceMiniMove,
		PackageID:            &standardPkgID,
		OrganizingServiceIDs: []uuid.UUID{packingSvcID},
		PickupDate:           weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, int64(50000), bd.OrganizingTotalCents)
	// floor(50000 * 0.0825) = 4125; the base price is never taxed.
	assert.Equal(t, int64(4125), bd.OrganizingTaxCents)
	assert.Equal(t, int64(179500+50000+4125), bd.TotalCents)
}

func TestCompute_NoTaxWithoutOrganizing(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &standardPkgID,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)
	assert.Zero(t, bd.OrganizingTaxCents)
}

func TestCompute_OrganizingTierMismatchRejected(t *testing.T) {
	spec := QuoteSpec{
		ServiceType:          catalog.ServiceMiniMove,
		PackageID:            &petitePkgID,
		OrganizingServiceIDs: []uuid.UUID{packingSvcID},
		PickupDate:           weekday(),
	}

	_, err := Compute(spec, testSnapshot())
	var invalid *InvalidPackageError
	require.ErrorAs(t, err, &invalid)
}

func TestCompute_PetiteCOIAlwaysFixed(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &petitePkgID,
		COIRequired: true,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	// Petite charges 5000 regardless of the package's own COI fee field.
	assert.Equal(t, int64(5000), bd.COIFeeCents)
	assert.Equal(t, int64(104500), bd.TotalCents)
}

func TestCompute_COIUsesPackageFeeForStandard(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &standardPkgID,
		COIRequired: true,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(9900), bd.COIFeeCents)
}

func TestCompute_COISkippedWhenIncluded(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &fullPkgID,
		COIRequired: true,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)
	assert.Zero(t, bd.COIFeeCents)
}

func TestCompute_OneHourWindowByTier(t *testing.T) {
	t.Run("standard pays the fee", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:   catalog.ServiceMiniMove,
			PackageID:     &standardPkgID,
			OneHourWindow: true,
			PickupDate:    weekday(),
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Equal(t, int64(2500), bd.TimeWindowSurchargeCents)
	})

	t.Run("full includes it free", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:   catalog.ServiceMiniMove,
			PackageID:     &fullPkgID,
			OneHourWindow: true,
			PickupDate:    weekday(),
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Zero(t, bd.TimeWindowSurchargeCents)
		assert.NotEmpty(t, bd.Disclaimers)
	})

	t.Run("petite rejects it", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:   catalog.ServiceMiniMove,
			PackageID:     &petitePkgID,
			OneHourWindow: true,
			PickupDate:    weekday(),
		}
		_, err := Compute(spec, testSnapshot())
		de, ok := domain.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, domain.CodeValidation, de.Code)
	})
}

func TestCompute_StandardDeliveryPerItem(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceStandardDelivery,
		ItemCount:   5,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	// 5 x 9500 = 47500, above the 28500 minimum.
	assert.Equal(t, int64(47500), bd.TotalCents)
	assert.Empty(t, bd.Disclaimers)
}

func TestCompute_StandardDeliveryMinimumApplied(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceStandardDelivery,
		ItemCount:   2,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	// 2 x 9500 = 19000 is floored up to the minimum.
	assert.Equal(t, int64(28500), bd.TotalCents)
	assert.Contains(t, bd.Disclaimers, "minimum delivery charge applied")
}

func TestCompute_SameDaySkipsDateSurcharges(t *testing.T) {
	snap := testSnapshot()
	snap.SurchargeRules = []catalog.SurchargeRule{{
		ID: uuid.New(), Name: "Weekend surcharge", Type: catalog.SurchargeWeekend,
		Calculation: catalog.CalcPercentage, Percent: 15,
		AppliesSaturday: true, AppliesSunday: true, Active: true,
	}}

	spec := QuoteSpec{
		ServiceType: catalog.ServiceStandardDelivery,
		ItemCount:   3,
		SameDay:     true,
		PickupDate:  saturday(),
	}

	bd, err := Compute(spec, snap)
	require.NoError(t, err)

	// minimum 28500 + same-day flat 36000, no weekend surcharge on top.
	assert.Equal(t, int64(64500), bd.TotalCents)
	assert.Zero(t, bd.DateSurchargeCents)
}

func TestCompute_AirportTransferMinimum(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceAirportTransfer,
		BagCount:    1,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	// One bag at 7500 is floored up to the 15000 minimum.
	assert.Equal(t, int64(15000), bd.TotalCents)
	assert.Contains(t, bd.Disclaimers, "minimum transfer charge applied")
}

func TestCompute_AirportTransferPerBag(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceAirportTransfer,
		BagCount:    4,
		PickupDate:  weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), bd.TotalCents)
}

func TestCompute_SpecialtyItemsQuantities(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceSpecialtyItem,
		SpecialtyItems: []SpecialtySelection{
			{ItemID: surfboardID, Quantity: 2},
		},
		PickupDate: weekday(),
	}

	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(60000), bd.TotalCents)
}

func TestCompute_GeoSurchargePerAddress(t *testing.T) {
	t.Run("both addresses in core", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:        catalog.ServiceMiniMove,
			PackageID:          &petitePkgID,
			PickupDate:         weekday(),
			PickupPostalCode:   "10001",
			DeliveryPostalCode: "10014",
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Zero(t, bd.GeoSurchargeCents)
	})

	t.Run("one extended address", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:        catalog.ServiceMiniMove,
			PackageID:          &petitePkgID,
			PickupDate:         weekday(),
			PickupPostalCode:   "10001",
			DeliveryPostalCode: "11201",
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Equal(t, int64(2500), bd.GeoSurchargeCents)
	})

	t.Run("both extended addresses", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:        catalog.ServiceMiniMove,
			PackageID:          &petitePkgID,
			PickupDate:         weekday(),
			PickupPostalCode:   "11101",
			DeliveryPostalCode: "11201",
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Equal(t, int64(5000), bd.GeoSurchargeCents)
	})

	t.Run("unserviceable address rejected", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType:      catalog.ServiceMiniMove,
			PackageID:        &petitePkgID,
			PickupDate:       weekday(),
			PickupPostalCode: "90210",
		}
		_, err := Compute(spec, testSnapshot())
		require.True(t, domain.IsNotFound(err))
	})

	t.Run("legacy out-of-zone flag", func(t *testing.T) {
		spec := QuoteSpec{
			ServiceType: catalog.ServiceMiniMove,
			PackageID:   &petitePkgID,
			PickupDate:  weekday(),
			OutOfZone:   true,
		}
		bd, err := Compute(spec, testSnapshot())
		require.NoError(t, err)
		assert.Equal(t, int64(2500), bd.GeoSurchargeCents)
	})
}

func TestCompute_TypedErrors(t *testing.T) {
	snap := testSnapshot()

	t.Run("unknown service type", func(t *testing.T) {
		_, err := Compute(QuoteSpec{ServiceType: "helicopter", PickupDate: weekday()}, snap)
		var typed *UnknownServiceTypeError
		require.ErrorAs(t, err, &typed)
	})

	t.Run("missing pickup date", func(t *testing.T) {
		_, err := Compute(QuoteSpec{ServiceType: catalog.ServiceMiniMove, PackageID: &petitePkgID}, snap)
		var typed *MissingRequiredFieldError
		require.ErrorAs(t, err, &typed)
	})

	t.Run("missing package", func(t *testing.T) {
		_, err := Compute(QuoteSpec{ServiceType: catalog.ServiceMiniMove, PickupDate: weekday()}, snap)
		var typed *MissingRequiredFieldError
		require.ErrorAs(t, err, &typed)
	})

	t.Run("unknown package", func(t *testing.T) {
		bogus := uuid.New()
		_, err := Compute(QuoteSpec{ServiceType: catalog.ServiceMiniMove, PackageID: &bogus, PickupDate: weekday()}, snap)
		var typed *InvalidPackageError
		require.ErrorAs(t, err, &typed)
	})
}

func TestCompute_TotalMatchesComponentSum(t *testing.T) {
	snap := testSnapshot()
	snap.SurchargeRules = []catalog.SurchargeRule{{
		ID: uuid.New(), Name: "Weekend surcharge", Type: catalog.SurchargeWeekend,
		Calculation: catalog.CalcPercentage, Percent: 10,
		AppliesSaturday: true, Active: true,
	}}

	spec := QuoteSpec{
		ServiceType:          catalog.ServiceMiniMove,
		PackageID:            &standardPkgID,
		OrganizingServiceIDs: []uuid.UUID{packingSvcID},
		COIRequired:          true,
		OneHourWindow:        true,
		PickupDate:           saturday(),
		PickupPostalCode:     "10001",
		DeliveryPostalCode:   "11201",
	}

	bd, err := Compute(spec, snap)
	require.NoError(t, err)

	sum := bd.BaseCents + bd.OrganizingTotalCents + bd.OrganizingTaxCents +
		bd.COIFeeCents + bd.GeoSurchargeCents + bd.TimeWindowSurchargeCents +
		bd.DateSurchargeCents - bd.DiscountCents
	assert.Equal(t, sum, bd.TotalCents)
	assert.GreaterOrEqual(t, bd.TotalCents, int64(0))
}

func TestWithDiscount_AppliedLastAndClamped(t *testing.T) {
	spec := QuoteSpec{
		ServiceType: catalog.ServiceMiniMove,
		PackageID:   &petitePkgID,
		PickupDate:  weekday(),
	}
	bd, err := Compute(spec, testSnapshot())
	require.NoError(t, err)

	t.Run("twenty percent off", func(t *testing.T) {
		// floor(99500 * 0.20) = 19900
		out := bd.WithDiscount("Discount (SAVE20)", 19900)
		assert.Equal(t, int64(79600), out.TotalCents)
		assert.Equal(t, int64(19900), out.DiscountCents)
		last := out.LineItems[len(out.LineItems)-1]
		assert.Equal(t, int64(-19900), last.AmountCents)
	})

	t.Run("oversized discount clamps to zero", func(t *testing.T) {
		out := bd.WithDiscount("Discount (EVERYTHING)", 500000)
		assert.Equal(t, int64(0), out.TotalCents)
	})

	t.Run("original breakdown untouched", func(t *testing.T) {
		_ = bd.WithDiscount("Discount (SAVE20)", 19900)
		assert.Equal(t, int64(99500), bd.TotalCents)
		assert.Zero(t, bd.DiscountCents)
	})
}
