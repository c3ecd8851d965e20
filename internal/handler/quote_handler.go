package handler

import (
	"github.com/BrightMove-Delivery/service-booking/internal/application"
	"github.com/BrightMove-Delivery/service-booking/internal/auth"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/middleware"
	"github.com/BrightMove-Delivery/service-booking/internal/response"
	"github.com/gin-gonic/gin"
)

// QuoteHandler handles quoting, catalog listings, and coverage checks.
// All of these are public: pricing happens before anyone signs in.
type QuoteHandler struct {
	quotes    *application.QuoteService
	catalog   *application.CatalogService
	discounts *application.DiscountService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes *application.QuoteService, catalogSvc *application.CatalogService, discounts *application.DiscountService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, catalog: catalogSvc, discounts: discounts}
}

// RegisterRoutes registers quote and catalog routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	optionalAuthMW := middleware.OptionalAuthMiddleware(jwtManager)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/quotes", optionalAuthMW, h.CreateQuote)
		v1.GET("/coverage", h.CheckCoverage)
		v1.POST("/discounts/preview", optionalAuthMW, h.PreviewDiscount)

		catalogGroup := v1.Group("/catalog")
		{
			catalogGroup.GET("/packages", h.ListPackages)
			catalogGroup.GET("/organizing-services", h.ListOrganizingServices)
			catalogGroup.GET("/specialty-items", h.ListSpecialtyItems)
		}
	}
}

// CreateQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// A signed-in caller's identity takes precedence over whatever
	// identity the body claims, so per-customer discount caps cannot
	// be probed under another name.
	if userID, ok := middleware.GetUserID(c); ok {
		req.CustomerIdentity = userID.String()
	}

	result, err := h.quotes.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckCoverage handles GET /api/v1/coverage?postal_code=10001.
func (h *QuoteHandler) CheckCoverage(c *gin.Context) {
	classification, err := h.catalog.CheckCoverage(c.Query("postal_code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"serviceable":        classification.Serviceable,
		"requires_surcharge": classification.RequiresSurcharge,
		"zone":               classification.Zone,
		"message":            classification.Message,
	})
}

// PreviewDiscount handles POST /api/v1/discounts/preview.
func (h *QuoteHandler) PreviewDiscount(c *gin.Context) {
	var req struct {
		Code             string              `json:"code" binding:"required"`
		OrderTotalCents  int64               `json:"order_total_cents" binding:"required"`
		ServiceType      catalog.ServiceType `json:"service_type" binding:"required"`
		CustomerIdentity string              `json:"customer_identity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if userID, ok := middleware.GetUserID(c); ok {
		req.CustomerIdentity = userID.String()
	}

	result, err := h.discounts.Preview(c.Request.Context(), req.Code, req.OrderTotalCents, req.ServiceType, req.CustomerIdentity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListPackages handles GET /api/v1/catalog/packages.
func (h *QuoteHandler) ListPackages(c *gin.Context) {
	result, err := h.catalog.ListPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrganizingServices handles GET /api/v1/catalog/organizing-services?tier=petite.
func (h *QuoteHandler) ListOrganizingServices(c *gin.Context) {
	result, err := h.catalog.ListOrganizingServices(c.Request.Context(), catalog.PackageTier(c.Query("tier")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListSpecialtyItems handles GET /api/v1/catalog/specialty-items.
func (h *QuoteHandler) ListSpecialtyItems(c *gin.Context) {
	result, err := h.catalog.ListSpecialtyItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
