package application

import (
	"context"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteRequest holds the data needed to price a service selection
// without creating a booking.
type QuoteRequest struct {
	ServiceType          catalog.ServiceType          `json:"service_type" binding:"required"`
	PackageID            *uuid.UUID                   `json:"package_id"`
	OrganizingServiceIDs []uuid.UUID                  `json:"organizing_service_ids"`
	COIRequired          bool                         `json:"coi_required"`
	OneHourWindow        bool                         `json:"one_hour_window"`
	ItemCount            int                          `json:"item_count"`
	SameDay              bool                         `json:"same_day"`
	SpecialtyItems       []pricing.SpecialtySelection `json:"specialty_items"`
	BagCount             int                          `json:"bag_count"`
	PickupDate           time.Time                    `json:"pickup_date" binding:"required"`
	PickupPostalCode     string                       `json:"pickup_postal_code"`
	DeliveryPostalCode   string                       `json:"delivery_postal_code"`
	DiscountCode         string                       `json:"discount_code"`
	CustomerIdentity     string                       `json:"customer_identity"`
}

// QuoteDTO is the response representation of a priced quote.
type QuoteDTO struct {
	ServiceType string             `json:"service_type"`
	LineItems   []pricing.LineItem `json:"line_items"`
	TotalCents  int64              `json:"total_cents"`
	Disclaimers []string           `json:"disclaimers,omitempty"`
	Breakdown   pricing.Breakdown  `json:"breakdown"`
}

// QuoteService prices service selections against the live catalog.
type QuoteService struct {
	catalogRepo catalog.CatalogRepository
	discounts   *DiscountService
	logger      *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(catalogRepo catalog.CatalogRepository, discounts *DiscountService, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		catalogRepo: catalogRepo,
		discounts:   discounts,
		logger:      logger,
	}
}

// Quote prices a service spec. A discount code, if present, is
// previewed against the pre-discount total but not redeemed.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteDTO, error) {
	snap, err := s.catalogRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	spec := toQuoteSpec(req)
	bd, err := pricing.Compute(spec, snap)
	if err != nil {
		return nil, err
	}

	if req.DiscountCode != "" {
		preview, err := s.discounts.Preview(ctx, req.DiscountCode, bd.PreDiscountTotalCents(), req.ServiceType, req.CustomerIdentity)
		if err != nil {
			return nil, err
		}
		bd = bd.WithDiscount(preview.Label, preview.AmountCents)
	}

	return &QuoteDTO{
		ServiceType: string(req.ServiceType),
		LineItems:   bd.LineItems,
		TotalCents:  bd.TotalCents,
		Disclaimers: bd.Disclaimers,
		Breakdown:   bd,
	}, nil
}

func toQuoteSpec(req QuoteRequest) pricing.QuoteSpec {
	return pricing.QuoteSpec{
		ServiceType:          req.ServiceType,
		PackageID:            req.PackageID,
		OrganizingServiceIDs: req.OrganizingServiceIDs,
		COIRequired:          req.COIRequired,
		OneHourWindow:        req.OneHourWindow,
		ItemCount:            req.ItemCount,
		SameDay:              req.SameDay,
		SpecialtyItems:       req.SpecialtyItems,
		BagCount:             req.BagCount,
		PickupDate:           req.PickupDate,
		PickupPostalCode:     req.PickupPostalCode,
		DeliveryPostalCode:   req.DeliveryPostalCode,
	}
}
