package controllers

import (
	"furniture-shop/middleware"
	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartController struct {
	store *services.Storefront
	log   *zap.Logger
}

func NewCartController(store *services.Storefront, log *zap.Logger) *CartController {
	return &CartController{store: store, log: log}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(400, gin.H{
		"success": false,
		"message": "Invalid request",
		"error":   err.Error(),
	})
}

// @Summary Get cart
// @Tags Cart
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.store.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "Cart retrieved", "data": view})
}

// @Summary Add item to cart
// @Description Lines with the same product and options are merged
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Param request body models.AddToCartRequest true "Item"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.store.AddItem(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(201, gin.H{"success": true, "message": "Item added to cart", "data": view})
}

// @Summary Update item quantity
// @Description A quantity of zero or less removes the line
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Param id path string true "Cart item id"
// @Param request body models.UpdateQuantityRequest true "Quantity"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.store.UpdateItem(c.Request.Context(), middleware.SessionID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "Cart updated", "data": view})
}

// @Summary Remove item
// @Tags Cart
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Param id path string true "Cart item id"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	view, err := ctrl.store.RemoveItem(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "Item removed", "data": view})
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Param X-Cart-Session header string false "Cart session token"
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view, err := ctrl.store.Clear(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "Cart cleared", "data": view})
}
