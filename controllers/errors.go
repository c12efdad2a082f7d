package controllers

import (
	"net/http"

	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrUnknownOption),
		errors.Is(err, services.ErrBundleNotAttachable):
		return http.StatusBadRequest, "Invalid selection"
	case errors.Is(err, services.ErrCartEmpty):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, services.ErrStaleCart):
		return http.StatusConflict, "Cart changed, please refresh"
	case errors.Is(err, services.ErrLineUnavailable):
		return http.StatusConflict, "An item in your cart is no longer available"
	case errors.Is(err, services.ErrDiscountExhausted):
		return http.StatusConflict, services.MsgUsageLimit
	case errors.Is(err, services.ErrOrderFailed):
		return http.StatusBadGateway, "Failed to create order"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
