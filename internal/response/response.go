package response

import (
	"errors"
	"net/http"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/pricing"
	"github.com/gin-gonic/gin"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 response with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps typed domain and pricing errors to HTTP responses.
// Anything unrecognized is treated as internal: the caller gets a
// generic safe message and the original error stays server-side.
func Error(c *gin.Context, err error) {
	var unknownService *pricing.UnknownServiceTypeError
	var missingField *pricing.MissingRequiredFieldError
	var invalidPackage *pricing.InvalidPackageError
	switch {
	case errors.As(err, &unknownService),
		errors.As(err, &missingField),
		errors.As(err, &invalidPackage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if de, ok := domain.AsDomainError(err); ok {
		c.JSON(statusFor(de.Code), gin.H{"error": de.Message, "code": de.Code})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeInvalidState:
		return http.StatusUnprocessableEntity
	case domain.CodeForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
