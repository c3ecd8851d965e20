package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/discount"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiscountCodeModel is the GORM model for the discount_codes table.
// Codes are stored in their normalized (upper-case) form.
type DiscountCodeModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code               string          `gorm:"uniqueIndex;not null;size:50"`
	Type               string          `gorm:"not null;size:20"`
	Value              int64           `gorm:"not null"`
	MinOrderCents      int64           `gorm:"not null;default:0"`
	MaxDiscountCents   int64           `gorm:"not null;default:0"`
	ServiceTypes       json.RawMessage `gorm:"type:jsonb"`
	MaxUses            int64           `gorm:"not null;default:0"`
	MaxUsesPerCustomer int64           `gorm:"not null;default:0"`
	UsedCount          int64           `gorm:"not null;default:0"`
	Active             bool            `gorm:"not null;default:true"`
	ExpiresAt          *time.Time      `gorm:""`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DiscountCodeModel) TableName() string { return "discount_codes" }

// DiscountUsageModel is the GORM model for the discount_usages table.
// The (code, booking) unique index guarantees at most one redemption
// row per booking even under event redelivery.
type DiscountUsageModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CodeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_code_booking;index:idx_usage_code_customer"`
	CustomerKey string    `gorm:"not null;size:254;index:idx_usage_code_customer"`
	BookingID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_code_booking"`
	AmountCents int64     `gorm:"not null"`
	RedeemedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DiscountUsageModel) TableName() string { return "discount_usages" }

// GormDiscountRepository is the GORM-based implementation of discount.Repository.
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository.
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByCode retrieves a code by its normalized string form.
func (r *GormDiscountRepository) FindByCode(ctx context.Context, code string) (*discount.DiscountCode, error) {
	var m DiscountCodeModel
	if err := r.db.WithContext(ctx).Where("code = ?", discount.NormalizeCode(code)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("DiscountCode", code)
		}
		return nil, fmt.Errorf("failed to find discount code: %w", err)
	}
	return toDomainDiscount(&m)
}

// CountCustomerUses returns prior redemptions of a code by one customer.
func (r *GormDiscountRepository) CountCustomerUses(ctx context.Context, codeID uuid.UUID, customer string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DiscountUsageModel{}).
		Where("code_id = ? AND customer_key = ?", codeID, discount.NormalizeCustomer(customer)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count customer uses: %w", err)
	}
	return count, nil
}

// Redeem records one redemption atomically. The code row is locked for
// the duration of the transaction, which serializes concurrent
// redemptions of the same code: the global counter is incremented only
// while under its cap, and the per-customer count is re-checked under
// the lock, closing the check-then-act window.
func (r *GormDiscountRepository) Redeem(ctx context.Context, usage discount.Usage) error {
	customer := discount.NormalizeCustomer(usage.CustomerKey)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m DiscountCodeModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", usage.CodeID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("DiscountCode", usage.CodeID.String())
			}
			return fmt.Errorf("failed to lock discount code: %w", err)
		}

		if m.MaxUses > 0 && m.UsedCount >= m.MaxUses {
			return domain.NewConflictError("code has been fully redeemed")
		}
		if m.MaxUsesPerCustomer > 0 {
			var uses int64
			if err := tx.Model(&DiscountUsageModel{}).
				Where("code_id = ? AND customer_key = ?", usage.CodeID, customer).
				Count(&uses).Error; err != nil {
				return fmt.Errorf("failed to count customer uses: %w", err)
			}
			if uses >= m.MaxUsesPerCustomer {
				return domain.NewConflictError("code already used by this customer")
			}
		}

		result := tx.Model(&DiscountCodeModel{}).
			Where("id = ?", usage.CodeID).
			Update("used_count", gorm.Expr("used_count + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to increment usage counter: %w", result.Error)
		}

		row := DiscountUsageModel{
			ID:          usage.ID,
			CodeID:      usage.CodeID,
			CustomerKey: customer,
			BookingID:   usage.BookingID,
			AmountCents: usage.AmountCents,
			RedeemedAt:  usage.RedeemedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewConflictError("discount already redeemed for this booking")
			}
			return fmt.Errorf("failed to record discount usage: %w", err)
		}
		return nil
	})
}

func toDomainDiscount(m *DiscountCodeModel) (*discount.DiscountCode, error) {
	var serviceTypes []catalog.ServiceType
	if len(m.ServiceTypes) > 0 {
		if err := json.Unmarshal(m.ServiceTypes, &serviceTypes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal service types: %w", err)
		}
	}
	return &discount.DiscountCode{
		ID:                 m.ID,
		Code:               m.Code,
		Type:               discount.DiscountType(m.Type),
		Value:              m.Value,
		MinOrderCents:      m.MinOrderCents,
		MaxDiscountCents:   m.MaxDiscountCents,
		ServiceTypes:       serviceTypes,
		MaxUses:            m.MaxUses,
		MaxUsesPerCustomer: m.MaxUsesPerCustomer,
		UsedCount:          m.UsedCount,
		Active:             m.Active,
		ExpiresAt:          m.ExpiresAt,
	}, nil
}
