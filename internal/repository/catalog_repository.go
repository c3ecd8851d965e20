package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServicePackageModel is the GORM model for the service_packages table.
type ServicePackageModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tier               string    `gorm:"not null;size:20;index"`
	Name               string    `gorm:"not null;size:100"`
	BasePriceCents     int64     `gorm:"not null"`
	MaxItems           int       `gorm:"not null;default:0"`
	MaxWeightLbs       int       `gorm:"not null;default:0"`
	COIIncluded        bool      `gorm:"not null;default:false"`
	COIFeeCents        int64     `gorm:"not null;default:0"`
	PriorityScheduling bool      `gorm:"not null;default:false"`
	ProtectiveWrapping bool      `gorm:"not null;default:false"`
	Active             bool      `gorm:"not null;default:true;index"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServicePackageModel) TableName() string { return "service_packages" }

// DeliveryConfigModel is the GORM model for the delivery_configs table.
// Exactly one row is active at a time.
type DeliveryConfigModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	PerItemCents     int64     `gorm:"not null"`
	MinimumItems     int       `gorm:"not null;default:1"`
	MinimumCents     int64     `gorm:"not null"`
	SameDayFlatCents int64     `gorm:"not null"`
	Active           bool      `gorm:"not null;default:false;index"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DeliveryConfigModel) TableName() string { return "delivery_configs" }

// SpecialtyItemModel is the GORM model for the specialty_items table.
type SpecialtyItemModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:100;uniqueIndex"`
	PriceCents int64     `gorm:"not null"`
	Active     bool      `gorm:"not null;default:true;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SpecialtyItemModel) TableName() string { return "specialty_items" }

// OrganizingServiceModel is the GORM model for the organizing_services table.
type OrganizingServiceModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind                string    `gorm:"not null;size:20"`
	Tier                string    `gorm:"not null;size:20;index"`
	Name                string    `gorm:"not null;size:100"`
	PriceCents          int64     `gorm:"not null"`
	DurationMinutes     int       `gorm:"not null;default:0"`
	Staff               int       `gorm:"not null;default:1"`
	SuppliesBudgetCents int64     `gorm:"not null;default:0"`
	Active              bool      `gorm:"not null;default:true;index"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (OrganizingServiceModel) TableName() string { return "organizing_services" }

// SurchargeRuleModel is the GORM model for the surcharge_rules table.
type SurchargeRuleModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"not null;size:100"`
	Type             string     `gorm:"not null;size:20"`
	Calculation      string     `gorm:"not null;size:20"`
	Percent          int64      `gorm:"not null;default:0"`
	FixedAmountCents int64      `gorm:"not null;default:0"`
	SpecificDate     *time.Time `gorm:""`
	StartDate        *time.Time `gorm:""`
	EndDate          *time.Time `gorm:""`
	AppliesSaturday  bool       `gorm:"not null;default:false"`
	AppliesSunday    bool       `gorm:"not null;default:false"`
	ServiceType      string     `gorm:"size:30"`
	Active           bool       `gorm:"not null;default:true;index"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SurchargeRuleModel) TableName() string { return "surcharge_rules" }

// GormCatalogRepository is the GORM-based implementation of catalog.CatalogRepository.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// LoadSnapshot fetches everything the pricing engine needs in one pass.
func (r *GormCatalogRepository) LoadSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	snap := catalog.Snapshot{
		Packages:           make(map[uuid.UUID]catalog.ServicePackage),
		SpecialtyItems:     make(map[uuid.UUID]catalog.SpecialtyItem),
		OrganizingServices: make(map[uuid.UUID]catalog.OrganizingService),
	}

	var pkgs []ServicePackageModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&pkgs).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, m := range pkgs {
		snap.Packages[m.ID] = toDomainPackage(m)
	}

	var cfg DeliveryConfigModel
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&cfg).Error
	switch {
	case err == nil:
		c := toDomainDeliveryConfig(cfg)
		snap.DeliveryConfig = &c
	case errors.Is(err, gorm.ErrRecordNotFound):
		// priced services other than standard delivery still work
	default:
		return catalog.Snapshot{}, fmt.Errorf("failed to load delivery config: %w", err)
	}

	var items []SpecialtyItemModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&items).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load specialty items: %w", err)
	}
	for _, m := range items {
		snap.SpecialtyItems[m.ID] = catalog.SpecialtyItem{
			ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, Active: m.Active,
		}
	}

	var orgs []OrganizingServiceModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&orgs).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load organizing services: %w", err)
	}
	for _, m := range orgs {
		snap.OrganizingServices[m.ID] = toDomainOrganizing(m)
	}

	var rules []SurchargeRuleModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&rules).Error; err != nil {
		return catalog.Snapshot{}, fmt.Errorf("failed to load surcharge rules: %w", err)
	}
	for _, m := range rules {
		snap.SurchargeRules = append(snap.SurchargeRules, toDomainRule(m))
	}

	return snap, nil
}

// FindPackage retrieves a service package by ID.
func (r *GormCatalogRepository) FindPackage(ctx context.Context, id uuid.UUID) (catalog.ServicePackage, error) {
	var m ServicePackageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.ServicePackage{}, domain.NewNotFoundError("ServicePackage", id.String())
		}
		return catalog.ServicePackage{}, fmt.Errorf("failed to find package: %w", err)
	}
	return toDomainPackage(m), nil
}

// ListPackages retrieves all active service packages.
func (r *GormCatalogRepository) ListPackages(ctx context.Context) ([]catalog.ServicePackage, error) {
	var models []ServicePackageModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("base_price_cents").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	pkgs := make([]catalog.ServicePackage, len(models))
	for i, m := range models {
		pkgs[i] = toDomainPackage(m)
	}
	return pkgs, nil
}

// ListOrganizingServices retrieves active organizing services for a tier.
func (r *GormCatalogRepository) ListOrganizingServices(ctx context.Context, tier catalog.PackageTier) ([]catalog.OrganizingService, error) {
	var models []OrganizingServiceModel
	if err := r.db.WithContext(ctx).Where("active = ? AND tier = ?", true, string(tier)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list organizing services: %w", err)
	}
	svcs := make([]catalog.OrganizingService, len(models))
	for i, m := range models {
		svcs[i] = toDomainOrganizing(m)
	}
	return svcs, nil
}

// ListSpecialtyItems retrieves all active specialty items.
func (r *GormCatalogRepository) ListSpecialtyItems(ctx context.Context) ([]catalog.SpecialtyItem, error) {
	var models []SpecialtyItemModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list specialty items: %w", err)
	}
	items := make([]catalog.SpecialtyItem, len(models))
	for i, m := range models {
		items[i] = catalog.SpecialtyItem{ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, Active: m.Active}
	}
	return items, nil
}

// --- Conversion Helpers ---

func toDomainPackage(m ServicePackageModel) catalog.ServicePackage {
	return catalog.ServicePackage{
		ID:                 m.ID,
		Tier:               catalog.PackageTier(m.Tier),
		Name:               m.Name,
		BasePriceCents:     m.BasePriceCents,
		MaxItems:           m.MaxItems,
		MaxWeightLbs:       m.MaxWeightLbs,
		COIIncluded:        m.COIIncluded,
		COIFeeCents:        m.COIFeeCents,
		PriorityScheduling: m.PriorityScheduling,
		ProtectiveWrapping: m.ProtectiveWrapping,
		Active:             m.Active,
	}
}

func toDomainDeliveryConfig(m DeliveryConfigModel) catalog.StandardDeliveryConfig {
	return catalog.StandardDeliveryConfig{
		ID:               m.ID,
		PerItemCents:     m.PerItemCents,
		MinimumItems:     m.MinimumItems,
		MinimumCents:     m.MinimumCents,
		SameDayFlatCents: m.SameDayFlatCents,
		Active:           m.Active,
	}
}

func toDomainOrganizing(m OrganizingServiceModel) catalog.OrganizingService {
	return catalog.OrganizingService{
		ID:                  m.ID,
		Kind:                catalog.OrganizingKind(m.Kind),
		Tier:                catalog.PackageTier(m.Tier),
		Name:                m.Name,
		PriceCents:          m.PriceCents,
		DurationMinutes:     m.DurationMinutes,
		Staff:               m.Staff,
		SuppliesBudgetCents: m.SuppliesBudgetCents,
		Active:              m.Active,
	}
}

func toDomainRule(m SurchargeRuleModel) catalog.SurchargeRule {
	return catalog.SurchargeRule{
		ID:               m.ID,
		Name:             m.Name,
		Type:             catalog.SurchargeType(m.Type),
		Calculation:      catalog.CalculationType(m.Calculation),
		Percent:          m.Percent,
		FixedAmountCents: m.FixedAmountCents,
		SpecificDate:     m.SpecificDate,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		AppliesSaturday:  m.AppliesSaturday,
		AppliesSunday:    m.AppliesSunday,
		ServiceType:      catalog.ServiceType(m.ServiceType),
		Active:           m.Active,
	}
}
