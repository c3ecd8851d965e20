package application

import (
	"context"
	"fmt"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/geo"
	"go.uber.org/zap"
)

// CatalogService exposes read-only catalog listings for booking flows.
type CatalogService struct {
	repo   catalog.CatalogRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo catalog.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListPackages returns the active mini-move packages.
func (s *CatalogService) ListPackages(ctx context.Context) ([]catalog.ServicePackage, error) {
	return s.repo.ListPackages(ctx)
}

// ListOrganizingServices returns the active organizing add-ons for a tier.
func (s *CatalogService) ListOrganizingServices(ctx context.Context, tier catalog.PackageTier) ([]catalog.OrganizingService, error) {
	if !tier.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid package tier: %s", tier))
	}
	return s.repo.ListOrganizingServices(ctx, tier)
}

// ListSpecialtyItems returns the active specialty item catalog.
func (s *CatalogService) ListSpecialtyItems(ctx context.Context) ([]catalog.SpecialtyItem, error) {
	return s.repo.ListSpecialtyItems(ctx)
}

// CheckCoverage classifies a postal code against the service area.
func (s *CatalogService) CheckCoverage(postalCode string) (geo.Classification, error) {
	return geo.Classify(postalCode)
}
