package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is an immutable view of the catalog taken before pricing.
// The pricing engine works only against a snapshot, never against the
// store, so it stays a pure function over already-fetched data.
type Snapshot struct {
	Packages           map[uuid.UUID]ServicePackage
	DeliveryConfig     *StandardDeliveryConfig
	SpecialtyItems     map[uuid.UUID]SpecialtyItem
	OrganizingServices map[uuid.UUID]OrganizingService
	SurchargeRules     []SurchargeRule
}

// PackageByTier returns the active package for a tier, if present.
func (s Snapshot) PackageByTier(tier PackageTier) (ServicePackage, bool) {
	for _, p := range s.Packages {
		if p.Tier == tier && p.Active {
			return p, true
		}
	}
	return ServicePackage{}, false
}

// CatalogRepository loads reference data for pricing. Implementations
// must return the single active StandardDeliveryConfig and only active
// rules and services.
type CatalogRepository interface {
	// LoadSnapshot fetches everything the pricing engine needs in one pass.
	LoadSnapshot(ctx context.Context) (Snapshot, error)

	// FindPackage retrieves a service package by ID.
	FindPackage(ctx context.Context, id uuid.UUID) (ServicePackage, error)

	// ListPackages retrieves all active service packages.
	ListPackages(ctx context.Context) ([]ServicePackage, error)

	// ListOrganizingServices retrieves active organizing services for a tier.
	ListOrganizingServices(ctx context.Context, tier PackageTier) ([]OrganizingService, error)

	// ListSpecialtyItems retrieves all active specialty items.
	ListSpecialtyItems(ctx context.Context) ([]SpecialtyItem, error)
}
