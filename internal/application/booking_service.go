package application

import (
	"context"
	"fmt"
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	bookingDomain "github.com/BrightMove-Delivery/service-booking/internal/domain/booking"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/customer"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/pricing"
	"github.com/BrightMove-Delivery/service-booking/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest holds the data needed to create a new booking.
// Guests supply a contact email; authenticated customers are
// identified by their token.
type CreateBookingRequest struct {
	QuoteRequest
	GuestEmail string `json:"guest_email"`
	GuestName  string `json:"guest_name"`
	Notes      string `json:"notes"`
}

// UpdateBookingRequest holds mutable booking fields. Reprice defaults
// to true; passing false limits the update to non-pricing fields such
// as notes, so a price the customer already saw is never recomputed
// behind their back or left stale.
type UpdateBookingRequest struct {
	PickupDate           *time.Time                    `json:"pickup_date"`
	PackageID            *uuid.UUID                    `json:"package_id"`
	OrganizingServiceIDs *[]uuid.UUID                  `json:"organizing_service_ids"`
	COIRequired          *bool                         `json:"coi_required"`
	OneHourWindow        *bool                         `json:"one_hour_window"`
	ItemCount            *int                          `json:"item_count"`
	SameDay              *bool                         `json:"same_day"`
	SpecialtyItems       *[]pricing.SpecialtySelection `json:"specialty_items"`
	BagCount             *int                          `json:"bag_count"`
	PickupPostalCode     *string                       `json:"pickup_postal_code"`
	DeliveryPostalCode   *string                       `json:"delivery_postal_code"`
	Notes                *string                       `json:"notes"`
	Reprice              *bool                         `json:"reprice"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID          `json:"id"`
	BookingNumber string             `json:"booking_number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	GuestEmail    string             `json:"guest_email,omitempty"`
	GuestName     string             `json:"guest_name,omitempty"`
	Status        string             `json:"status"`
	ServiceType   string             `json:"service_type"`
	Spec          pricing.QuoteSpec  `json:"spec"`
	Breakdown     pricing.Breakdown  `json:"breakdown"`
	TotalCents    int64              `json:"total_cents"`
	DiscountCode  string             `json:"discount_code,omitempty"`
	ConfirmedAt   *time.Time         `json:"confirmed_at,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CancelNote    string             `json:"cancel_note,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// EventPublisher publishes CloudEvents keyed by aggregate, so events
// for one booking stay ordered. Satisfied by events.Producer.
type EventPublisher interface {
	PublishKeyed(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo        bookingDomain.Repository
	catalogRepo catalog.CatalogRepository
	statsRepo   customer.StatsRepository
	discounts   *DiscountService
	producer    EventPublisher
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	catalogRepo catalog.CatalogRepository,
	statsRepo customer.StatsRepository,
	discounts *DiscountService,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:        repo,
		catalogRepo: catalogRepo,
		statsRepo:   statsRepo,
		discounts:   discounts,
		producer:    producer,
		logger:      logger,
	}
}

// CreateBooking prices the spec, persists the booking, and only then
// redeems any discount code, so a failed creation never burns a
// customer's single-use code.
func (s *BookingService) CreateBooking(ctx context.Context, customerID *uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	snap, err := s.catalogRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	spec := toQuoteSpec(req.QuoteRequest)
	undiscounted, err := pricing.Compute(spec, snap)
	if err != nil {
		return nil, err
	}

	identity := req.GuestEmail
	if customerID != nil {
		identity = customerID.String()
	}

	bd := undiscounted
	var preview *DiscountPreview
	var discountCode string
	if req.DiscountCode != "" {
		preview, err = s.discounts.Preview(ctx, req.DiscountCode, undiscounted.PreDiscountTotalCents(), req.ServiceType, identity)
		if err != nil {
			return nil, err
		}
		bd = undiscounted.WithDiscount(preview.Label, preview.AmountCents)
		discountCode = preview.Code
	}

	bk, err := bookingDomain.NewBooking(customerID, req.GuestEmail, req.GuestName, spec, bd, discountCode, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	if preview != nil {
		if err := s.discounts.Redeem(ctx, preview, bk.ID(), bk.CustomerKey()); err != nil {
			// A concurrent redemption won the caps between preview and
			// now. Keep the booking, drop the discount.
			s.logger.Warn("discount redemption lost race; removing discount from booking",
				zap.String("booking_id", bk.ID().String()),
				zap.String("code", preview.Code),
				zap.Error(err),
			)
			bk.RemoveDiscount(undiscounted)
			bk.IncrementVersion()
			if err := s.repo.Update(ctx, bk); err != nil {
				return nil, fmt.Errorf("failed to remove unredeemable discount: %w", err)
			}
		}
	}

	s.publishStatusEvent(ctx, events.BookingCreated, bk, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a single booking by its booking number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for an authenticated customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetGuestBookings retrieves paginated bookings for a guest contact email.
func (s *BookingService) GetGuestBookings(ctx context.Context, email string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByGuestEmail(ctx, email, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// UpdateBooking applies field changes. Pricing-relevant changes
// recompute the breakdown; with reprice=false they are rejected
// outright so the stored breakdown can never go stale.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	reprice := req.Reprice == nil || *req.Reprice
	if !reprice && hasPricingChanges(req) {
		return nil, domain.NewValidationError("pricing fields cannot change with reprice disabled")
	}

	spec := bk.Spec()
	applySpecChanges(&spec, req)

	if reprice {
		snap, err := s.catalogRepo.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		bd, err := pricing.Compute(spec, snap)
		if err != nil {
			return nil, err
		}
		if code := bk.DiscountCode(); code != "" {
			// The redemption already happened at creation; only the
			// amount is recomputed against the new total.
			preview, err := s.discounts.Preview(ctx, code, bd.PreDiscountTotalCents(), spec.ServiceType, bk.CustomerKey())
			if err == nil {
				bd = bd.WithDiscount(preview.Label, preview.AmountCents)
			} else {
				s.logger.Warn("existing discount no longer validates after update; keeping booking undiscounted",
					zap.String("booking_id", bk.ID().String()),
					zap.Error(err),
				)
			}
		}
		if err := bk.Reprice(spec, bd); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		bk.UpdateNotes(*req.Notes)
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmBooking transitions the booking from pending to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusConfirmed, events.BookingConfirmed)
}

// MarkPaid transitions the booking from confirmed to paid. Invoked by
// the payment event consumer and by staff.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID uuid.UUID) error {
	_, err := s.transition(ctx, bookingID, bookingDomain.StatusPaid, events.BookingPaid)
	return err
}

// CompleteBooking transitions the booking from paid to completed and
// records the customer's statistics exactly once.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusCompleted, events.BookingCompleted)
}

// CancelBooking cancels a booking that is not yet in a terminal state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	effects, err := bk.Cancel(reason)
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusEvent(ctx, events.BookingCancelled, bk, reason)
	s.dispatchEffects(ctx, bk, effects)

	result := toBookingDTO(bk)
	return &result, nil
}

// ValidateTransition reports whether a transition is legal without
// applying it.
func (s *BookingService) ValidateTransition(current, requested string) error {
	cur, err := bookingDomain.ParseStatus(current)
	if err != nil {
		return domain.NewValidationError(err.Error())
	}
	return bookingDomain.ValidateTransition(cur, bookingDomain.Status(requested))
}

// Rebook prices an existing booking's spec at current catalog rates
// and creates a fresh pending booking for the same customer.
func (s *BookingService) Rebook(ctx context.Context, customerID uuid.UUID, originalBookingID uuid.UUID) (*BookingDTO, error) {
	original, err := s.repo.FindByID(ctx, originalBookingID)
	if err != nil {
		return nil, err
	}
	if original.CustomerID() == nil || *original.CustomerID() != customerID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	spec := original.Spec()
	req := CreateBookingRequest{
		QuoteRequest: QuoteRequest{
			ServiceType:          spec.ServiceType,
			PackageID:            spec.PackageID,
			OrganizingServiceIDs: spec.OrganizingServiceIDs,
			COIRequired:          spec.COIRequired,
			OneHourWindow:        spec.OneHourWindow,
			ItemCount:            spec.ItemCount,
			SameDay:              spec.SameDay,
			SpecialtyItems:       spec.SpecialtyItems,
			BagCount:             spec.BagCount,
			PickupDate:           spec.PickupDate,
			PickupPostalCode:     spec.PickupPostalCode,
			DeliveryPostalCode:   spec.DeliveryPostalCode,
		},
		Notes: original.Notes(),
	}
	return s.CreateBooking(ctx, &customerID, req)
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// GetCustomerStats returns a customer's accumulated statistics (admin).
func (s *BookingService) GetCustomerStats(ctx context.Context, customerKey string) (*customer.Stats, error) {
	return s.statsRepo.Get(ctx, customerKey)
}

// --- Helpers ---

func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, target bookingDomain.Status, eventType string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	effects, err := bk.TransitionTo(target)
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusEvent(ctx, eventType, bk, "")
	s.dispatchEffects(ctx, bk, effects)

	result := toBookingDTO(bk)
	return &result, nil
}

// dispatchEffects executes the side effects a transition returned.
// Notification is satisfied by the already-published status event,
// which the notification sender consumes fire-and-forget; statistics
// recording goes through the idempotent repository guard.
func (s *BookingService) dispatchEffects(ctx context.Context, bk *bookingDomain.Booking, effects []bookingDomain.Effect) {
	for _, effect := range effects {
		switch effect {
		case bookingDomain.EffectNotifyCustomer:
			// covered by publishStatusEvent

		case bookingDomain.EffectRecordStats:
			applied, err := s.statsRepo.RecordCompletion(ctx, customer.CompletionDelta{
				BookingID:   bk.ID(),
				CustomerKey: bk.CustomerKey(),
				SpentCents:  bk.TotalCents(),
				CompletedAt: time.Now().UTC(),
			})
			if err != nil {
				s.logger.Error("failed to record customer stats",
					zap.String("booking_id", bk.ID().String()),
					zap.Error(err),
				)
				continue
			}
			if applied {
				bk.MarkStatsRecorded()
			} else {
				s.logger.Info("completion stats already recorded; skipping",
					zap.String("booking_id", bk.ID().String()),
				)
			}
		}
	}
}

func (s *BookingService) publishStatusEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, reason string) {
	evt := events.BookingEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerKey:   bk.CustomerKey(),
		ServiceType:   string(bk.ServiceType()),
		Status:        string(bk.Status()),
		TotalCents:    bk.TotalCents(),
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}

	cloudEvent, err := events.NewCloudEvent("service-booking", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishKeyed(ctx, events.TopicBookingEvents, bk.ID().String(), cloudEvent); err != nil {
		// Fire and forget: a notification failure never rolls back a
		// pricing or status operation.
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// hasPricingChanges reports whether the request carries any field that
// feeds the pricing engine. Such changes require a reprice; accepting
// them without one would leave the stored breakdown stale.
func hasPricingChanges(req UpdateBookingRequest) bool {
	return req.PickupDate != nil ||
		req.PackageID != nil ||
		req.OrganizingServiceIDs != nil ||
		req.COIRequired != nil ||
		req.OneHourWindow != nil ||
		req.ItemCount != nil ||
		req.SameDay != nil ||
		req.SpecialtyItems != nil ||
		req.BagCount != nil ||
		req.PickupPostalCode != nil ||
		req.DeliveryPostalCode != nil
}

func applySpecChanges(spec *pricing.QuoteSpec, req UpdateBookingRequest) {
	if req.PickupDate != nil {
		spec.PickupDate = *req.PickupDate
	}
	if req.PackageID != nil {
		spec.PackageID = req.PackageID
	}
	if req.OrganizingServiceIDs != nil {
		spec.OrganizingServiceIDs = *req.OrganizingServiceIDs
	}
	if req.COIRequired != nil {
		spec.COIRequired = *req.COIRequired
	}
	if req.OneHourWindow != nil {
		spec.OneHourWindow = *req.OneHourWindow
	}
	if req.ItemCount != nil {
		spec.ItemCount = *req.ItemCount
	}
	if req.SameDay != nil {
		spec.SameDay = *req.SameDay
	}
	if req.SpecialtyItems != nil {
		spec.SpecialtyItems = *req.SpecialtyItems
	}
	if req.BagCount != nil {
		spec.BagCount = *req.BagCount
	}
	if req.PickupPostalCode != nil {
		spec.PickupPostalCode = *req.PickupPostalCode
	}
	if req.DeliveryPostalCode != nil {
		spec.DeliveryPostalCode = *req.DeliveryPostalCode
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		GuestEmail:    bk.GuestEmail(),
		GuestName:     bk.GuestName(),
		Status:        string(bk.Status()),
		ServiceType:   string(bk.ServiceType()),
		Spec:          bk.Spec(),
		Breakdown:     bk.Breakdown(),
		TotalCents:    bk.TotalCents(),
		DiscountCode:  bk.DiscountCode(),
		ConfirmedAt:   bk.ConfirmedAt(),
		PaidAt:        bk.PaidAt(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
		CancelNote:    bk.CancelNote(),
		Notes:         bk.Notes(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}
