package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/customer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerStatsModel is the GORM model for the customer_stats table.
type CustomerStatsModel struct {
	CustomerKey   string     `gorm:"primaryKey;size:254"`
	TotalBookings int64      `gorm:"not null;default:0"`
	TotalSpent    int64      `gorm:"not null;default:0"`
	LastBookingAt *time.Time `gorm:""`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerStatsModel) TableName() string { return "customer_stats" }

// GormStatsRepository is the GORM-based implementation of customer.StatsRepository.
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new GormStatsRepository.
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// RecordCompletion applies a completion delta exactly once per booking.
// The stats_recorded flag on the booking row is flipped with a
// conditional update inside the same transaction as the stats upsert:
// a redelivered completion event finds the flag already set and
// becomes a no-op. The upsert itself uses database-side addition, so
// concurrent completions for the same customer never lose updates.
func (r *GormStatsRepository) RecordCompletion(ctx context.Context, delta customer.CompletionDelta) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guard := tx.Model(&BookingModel{}).
			Where("id = ? AND stats_recorded = ?", delta.BookingID, false).
			Update("stats_recorded", true)
		if guard.Error != nil {
			return fmt.Errorf("failed to set stats guard: %w", guard.Error)
		}
		if guard.RowsAffected == 0 {
			// already recorded, or booking missing; both are no-ops
			return nil
		}

		now := time.Now().UTC()
		row := CustomerStatsModel{
			CustomerKey:   delta.CustomerKey,
			TotalBookings: 1,
			TotalSpent:    delta.SpentCents,
			LastBookingAt: &delta.CompletedAt,
			UpdatedAt:     now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_bookings":  gorm.Expr("customer_stats.total_bookings + 1"),
				"total_spent":     gorm.Expr("customer_stats.total_spent + ?", delta.SpentCents),
				"last_booking_at": delta.CompletedAt,
				"updated_at":      now,
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert customer stats: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// Get retrieves a customer's current statistics.
func (r *GormStatsRepository) Get(ctx context.Context, customerKey string) (*customer.Stats, error) {
	var m CustomerStatsModel
	if err := r.db.WithContext(ctx).Where("customer_key = ?", customerKey).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("CustomerStats", customerKey)
		}
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}
	return &customer.Stats{
		CustomerKey:   m.CustomerKey,
		TotalBookings: m.TotalBookings,
		TotalSpent:    m.TotalSpent,
		LastBookingAt: m.LastBookingAt,
	}, nil
}
