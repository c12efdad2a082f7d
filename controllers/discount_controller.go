package controllers

import (
	"time"

	"furniture-shop/middleware"
	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DiscountController struct {
	store     *services.Storefront
	discounts *services.DiscountService
	log       *zap.Logger
}

func NewDiscountController(store *services.Storefront, discounts *services.DiscountService, log *zap.Logger) *DiscountController {
	return &DiscountController{store: store, discounts: discounts, log: log}
}

// @Summary Apply discount code
// @Description Rejected codes return 422 with the reason in message
// @Tags Discounts
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Param request body models.ApplyDiscountRequest true "Code"
// @Success 200 {object} models.Response
// @Failure 422 {object} models.ErrorResponse
// @Router /cart/discount [post]
func (ctrl *DiscountController) ApplyDiscount(c *gin.Context) {
	var req models.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, res, err := ctrl.store.ApplyDiscount(c.Request.Context(), middleware.SessionID(c), req.Code)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	if !res.Valid {
		c.JSON(422, gin.H{
			"success": false,
			"message": res.Error,
		})
		return
	}
	c.JSON(200, gin.H{"success": true, "message": res.Applied.Message, "data": view})
}

// @Summary Remove discount code
// @Description Also stops automatic discounts for this cart until it is cleared
// @Tags Discounts
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Success 200 {object} models.Response
// @Router /cart/discount [delete]
func (ctrl *DiscountController) RemoveDiscount(c *gin.Context) {
	view, err := ctrl.store.RemoveDiscount(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "Discount removed", "data": view})
}

// @Summary Current automatic discount
// @Description The promotion applied automatically to eligible carts, if any
// @Tags Discounts
// @Produce json
// @Success 200 {object} models.Response
// @Router /discounts/auto-apply [get]
func (ctrl *DiscountController) GetAutoApply(c *gin.Context) {
	dc, err := ctrl.discounts.FindAutoApply(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	if dc == nil || !dc.Usable(time.Now()) {
		c.JSON(200, gin.H{"success": true, "message": "No automatic discount", "data": nil})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "Automatic discount retrieved",
		"data": gin.H{
			"code":             dc.Code,
			"type":             dc.Type,
			"value":            dc.Value,
			"min_order_amount": dc.MinOrderAmount,
			"expires_at":       dc.ExpiresAt,
		},
	})
}
