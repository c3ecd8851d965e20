package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	bookingDomain "github.com/BrightMove-Delivery/service-booking/internal/domain/booking"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/pricing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saveRetries bounds booking-number regeneration on unique conflicts.
const saveRetries = 3

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	GuestEmail    string          `gorm:"index;size:254"`
	GuestName     string          `gorm:"size:200"`
	Status        string          `gorm:"not null;size:30;index"`
	ServiceType   string          `gorm:"not null;size:30;index"`
	Spec          json.RawMessage `gorm:"type:jsonb;not null"`
	Breakdown     json.RawMessage `gorm:"type:jsonb;not null"`
	TotalCents    int64           `gorm:"not null"`
	DiscountCode  string          `gorm:"size:50"`
	StatsRecorded bool            `gorm:"not null;default:false"`
	ConfirmedAt   *time.Time      `gorm:""`
	PaidAt        *time.Time      `gorm:""`
	CompletedAt   *time.Time      `gorm:""`
	CancelledAt   *time.Time      `gorm:""`
	CancelNote    string          `gorm:"size:500"`
	Notes         string          `gorm:"size:1000"`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for an authenticated customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findWhere(ctx, "customer_id = ?", customerID, page, limit)
}

// FindByGuestEmail retrieves bookings for a guest contact with pagination.
func (r *GormBookingRepository) FindByGuestEmail(ctx context.Context, email string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findWhere(ctx, "guest_email = ?", email, page, limit)
}

func (r *GormBookingRepository) findWhere(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// Save persists a new booking. On a booking-number uniqueness conflict
// the number is regenerated and the insert retried a bounded number of
// times; the unique constraint is what makes concurrent creations safe.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	for attempt := 0; ; attempt++ {
		model, err := toBookingModel(bk)
		if err != nil {
			return fmt.Errorf("failed to convert booking to model: %w", err)
		}

		err = r.db.WithContext(ctx).Create(model).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= saveRetries {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		if err := bk.RegenerateNumber(); err != nil {
			return err
		}
	}
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the stored version matches the version before
	// IncrementVersion was called.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"spec":           model.Spec,
			"breakdown":      model.Breakdown,
			"total_cents":    model.TotalCents,
			"discount_code":  model.DiscountCode,
			"stats_recorded": model.StatsRecorded,
			"confirmed_at":   model.ConfirmedAt,
			"paid_at":        model.PaidAt,
			"completed_at":   model.CompletedAt,
			"cancelled_at":   model.CancelledAt,
			"cancel_note":    model.CancelNote,
			"notes":          model.Notes,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	specJSON, err := json.Marshal(bk.Spec())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote spec: %w", err)
	}
	breakdownJSON, err := json.Marshal(bk.Breakdown())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	return &BookingModel{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		GuestEmail:    bk.GuestEmail(),
		GuestName:     bk.GuestName(),
		Status:        string(bk.Status()),
		ServiceType:   string(bk.ServiceType()),
		Spec:          specJSON,
		Breakdown:     breakdownJSON,
		TotalCents:    bk.TotalCents(),
		DiscountCode:  bk.DiscountCode(),
		StatsRecorded: bk.StatsRecorded(),
		ConfirmedAt:   bk.ConfirmedAt(),
		PaidAt:        bk.PaidAt(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
		CancelNote:    bk.CancelNote(),
		Notes:         bk.Notes(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var spec pricing.QuoteSpec
	if err := json.Unmarshal(m.Spec, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote spec: %w", err)
	}

	var breakdown pricing.Breakdown
	if err := json.Unmarshal(m.Breakdown, &breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.CustomerID,
		m.GuestEmail,
		m.GuestName,
		status,
		catalog.ServiceType(m.ServiceType),
		spec,
		breakdown,
		m.DiscountCode,
		m.StatsRecorded,
		m.ConfirmedAt,
		m.PaidAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
