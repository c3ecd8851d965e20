package catalog

import "github.com/google/uuid"

// PackageTier is the mini-move package tier.
type PackageTier string

const (
	TierPetite   PackageTier = "petite"
	TierStandard PackageTier = "standard"
	TierFull     PackageTier = "full"
)

// IsValid returns true if the tier is recognized.
func (t PackageTier) IsValid() bool {
	switch t {
	case TierPetite, TierStandard, TierFull:
		return true
	}
	return false
}

// ServicePackage is a mini-move package tier offering. Packages are
// reference data: immutable once a priced booking points at them.
type ServicePackage struct {
	ID                 uuid.UUID
	Tier               PackageTier
	Name               string
	BasePriceCents     int64
	MaxItems           int
	MaxWeightLbs       int
	COIIncluded        bool
	COIFeeCents        int64
	PriorityScheduling bool
	ProtectiveWrapping bool
	Active             bool
}

// StandardDeliveryConfig is the single active per-item delivery configuration.
type StandardDeliveryConfig struct {
	ID               uuid.UUID
	PerItemCents     int64
	MinimumItems     int
	MinimumCents     int64
	SameDayFlatCents int64
	Active           bool
}

// SpecialtyItem is a flat-priced named item type (bike, surfboard, ...).
type SpecialtyItem struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
	Active     bool
}

// OrganizingKind distinguishes packing from unpacking add-ons.
type OrganizingKind string

const (
	OrganizingPacking   OrganizingKind = "packing"
	OrganizingUnpacking OrganizingKind = "unpacking"
)

// OrganizingService is a packing or unpacking add-on scoped to one tier.
type OrganizingService struct {
	ID                  uuid.UUID
	Kind                OrganizingKind
	Tier                PackageTier
	Name                string
	PriceCents          int64
	DurationMinutes     int
	Staff               int
	SuppliesBudgetCents int64
	Active              bool
}
