package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/BrightMove-Delivery/service-booking/internal/application"
	"github.com/BrightMove-Delivery/service-booking/internal/auth"
	"github.com/BrightMove-Delivery/service-booking/internal/middleware"
	"github.com/BrightMove-Delivery/service-booking/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// Creation and number lookup allow guests; everything else requires a
// token, with staff-only status transitions.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	optionalAuthMW := middleware.OptionalAuthMiddleware(jwtManager)
	staffOnly := middleware.RequireRole(auth.RoleStaff)

	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", optionalAuthMW, h.CreateBooking)
		bookings.GET("/number/:number", h.GetBookingByNumber)

		bookings.GET("", authMW, h.ListBookings)
		bookings.GET("/:id", authMW, h.GetBooking)
		bookings.POST("/:id/cancel", authMW, h.CancelBooking)
		bookings.POST("/:id/rebook", authMW, middleware.RequireRole(auth.RoleCustomer), h.RebookBooking)

		bookings.PATCH("/:id", authMW, staffOnly, h.UpdateBooking)
		bookings.POST("/:id/confirm", authMW, staffOnly, h.ConfirmBooking)
		bookings.POST("/:id/pay", authMW, staffOnly, h.MarkPaid)
		bookings.POST("/:id/complete", authMW, staffOnly, h.CompleteBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings. An authenticated
// customer books under their account; anyone else books as a guest
// with a contact email.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var customerID *uuid.UUID
	if userID, ok := middleware.GetUserID(c); ok {
		customerID = &userID
		req.GuestEmail = ""
		req.GuestName = ""
	}

	result, err := h.service.CreateBooking(c.Request.Context(), customerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Customers see their own
// bookings; staff can list a guest's bookings with ?guest_email=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	role, _ := middleware.GetUserRole(c)
	if email := c.Query("guest_email"); email != "" && role == auth.RoleStaff {
		result, err := h.service.GetGuestBookings(c.Request.Context(), email, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	result, err := h.service.GetCustomerBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id. Customers can only read
// their own bookings; staff can read any.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canAccessBooking(c, result) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	response.Success(c, result)
}

// GetBookingByNumber handles GET /api/v1/bookings/number/:number.
// Booking numbers are unguessable, so they double as a guest's lookup
// credential.
func (h *BookingHandler) GetBookingByNumber(c *gin.Context) {
	result, err := h.service.GetBookingByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBooking handles PATCH /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.service.ConfirmBooking)
}

// MarkPaid handles POST /api/v1/bookings/:id/pay. Normally payment
// arrives via the payment event stream; this endpoint covers manual
// reconciliation by staff.
func (h *BookingHandler) MarkPaid(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.MarkPaid(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, h.service.CompleteBooking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel. Customers
// can cancel their own bookings; staff can cancel any.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	existing, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canAccessBooking(c, existing) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RebookBooking handles POST /api/v1/bookings/:id/rebook.
func (h *BookingHandler) RebookBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.Rebook(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*application.BookingDTO, error)) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := op(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// canAccessBooking reports whether the caller may read or cancel the
// booking: staff always, customers only for their own bookings.
func canAccessBooking(c *gin.Context, b *application.BookingDTO) bool {
	if role, _ := middleware.GetUserRole(c); role == auth.RoleStaff {
		return true
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return false
	}
	return b.CustomerID != nil && *b.CustomerID == userID
}
